// pkg/core/errors.go
package core

import (
	"context"
	"errors"
	"net/http"

	"github.com/henryktews/vue-storefront/pkg/codec"
	"github.com/henryktews/vue-storefront/pkg/integration"
)

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusOf maps handler failures to HTTP. Endpoints opt into a specific
// status via *integration.APIError; upstream refusals become 502 so
// backend failures read as gateway errors, not middleware bugs.
func statusOf(err error) int {
	var ae *integration.APIError
	if errors.As(err, &ae) && ae.Status > 0 {
		return ae.Status
	}
	var ue *integration.UpstreamError
	if errors.As(err, &ue) {
		return http.StatusBadGateway
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func renderError(w http.ResponseWriter, err error) int {
	status := statusOf(err)
	env := errorEnvelope{Error: err.Error()}
	var ae *integration.APIError
	if errors.As(err, &ae) {
		env.Code = ae.Code
	}
	raw, mErr := codec.JSON.Marshal(env)
	if mErr != nil {
		raw = []byte(`{"error":"internal"}`)
	}
	writeJSON(w, raw, status)
	return status
}

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

// integration/errors.go
package integration

import "fmt"

// APIError lets an endpoint choose the HTTP status its failure maps to.
// Any other error surfaces as 500 (or 502 for UpstreamError).
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"error"`
}

func (e *APIError) Error() string { return e.Message }

func E(status int, code, msg string) *APIError {
	return &APIError{Status: status, Code: code, Message: msg}
}

// UpstreamError is returned by Client when the backend answers outside
// 2xx. The router maps it to 502 so backend failures are not mistaken
// for middleware bugs.
type UpstreamError struct {
	Status int
	URL    string
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned %d", e.URL, e.Status)
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/middleware"
	"github.com/henryktews/vue-storefront/pkg/middleware/auth"
)

// Collect produces the HTTP middleware that records the counters/histogram.
func Collect(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()

			defer func() {
				// Skip self-scrape and any additional caller-configured paths
				if isSkipPath(r) {
					return
				}

				role := ""
				if ca != nil {
					role = ca.GetUser(r.Context()).Role.Name
				}

				code := strconv.Itoa(ww.Status())
				totalHttpRequestsFromRole.WithLabelValues(role).Inc()
				totalHttpRequests.WithLabelValues(code, r.Method).Inc()
				responseTime.Observe(time.Since(startTime).Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// ObserveCall records one endpoint dispatch; called by the router after
// the handler completes. Label values are manifest names, so cardinality
// is bounded by the registry.
func ObserveCall(integration, endpoint string, status int, d time.Duration) {
	integrationCalls.WithLabelValues(integration, endpoint, strconv.Itoa(status)).Inc()
	integrationCallSeconds.WithLabelValues(integration, endpoint).Observe(d.Seconds())
}

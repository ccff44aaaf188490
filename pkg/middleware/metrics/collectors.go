package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code and method"},
		[]string{"code", "method"},
	)

	totalHttpRequestsFromRole = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_from_role", Help: "http requests from role"},
		[]string{"role"},
	)

	integrationCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "integration_calls_total", Help: "endpoint dispatches by integration, endpoint and code"},
		[]string{"integration", "endpoint", "code"},
	)

	integrationCallSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "integration_call_seconds",
			Help:    "endpoint dispatch latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"integration", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequests,
		totalHttpRequestsFromRole,
		integrationCalls,
		integrationCallSeconds,
	)
}

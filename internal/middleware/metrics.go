package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bryanwahyu/feedback-lens/internal/metrics"
)

// Metrics tracks request counts and in-flight requests.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.InFlight(1)
		defer metrics.InFlight(-1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)
		metrics.ObserveHTTP(r.Method, wrapped.statusCode)
	})
}

// MetricsHandler exposes the gatherer in the Prometheus text format.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

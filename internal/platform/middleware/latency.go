package middleware

import (
	"net/http"
	"time"

	"healthpass/internal/credential/metrics"
)

// Latency records per-endpoint request latency into the metrics histogram.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			next.ServeHTTP(w, r)
			m.EndpointLatency.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}

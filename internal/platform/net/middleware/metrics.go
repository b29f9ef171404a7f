package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notegate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notegate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	upstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notegate_upstream_calls_total",
			Help: "Calls to the note provider by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notegate_search_cache_lookups_total",
			Help: "Search cache lookups by result",
		},
		[]string{"result"},
	)
)

// Metrics records request counts and latencies per route
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(cw, r)

		path := r.URL.Path
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(cw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// ObserveUpstream counts one provider call outcome
func ObserveUpstream(op, outcome string) {
	upstreamCalls.WithLabelValues(op, outcome).Inc()
}

// ObserveCacheLookup counts one search cache lookup ("hit" | "miss" | "expired")
func ObserveCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// Package metrics holds the Prometheus collectors shared across vibe.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibe_youtube_requests_total",
		Help: "YouTube Data API requests by endpoint and status code",
	}, []string{"endpoint", "status"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibe_youtube_request_duration_seconds",
		Help:    "YouTube Data API request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	upstreamRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibe_youtube_retries_total",
		Help: "YouTube Data API retries by endpoint",
	}, []string{"endpoint"})

	sessionStoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibe_session_store_operations_total",
		Help: "Session store operations by backend, operation and outcome",
	}, []string{"backend", "op", "outcome"}) // outcome=hit|miss|ok|error

	itemsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibe_items_started_total",
		Help: "Items started by the active vibe filter",
	}, []string{"vibe"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibe_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vibe_http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})
)

// ObserveUpstream records one YouTube request. status is 0 for network errors.
func ObserveUpstream(endpoint string, status int, d time.Duration) {
	upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncUpstreamRetry counts a retried YouTube request.
func IncUpstreamRetry(endpoint string) {
	upstreamRetries.WithLabelValues(endpoint).Inc()
}

// IncStoreOp counts a session store operation.
func IncStoreOp(backend, op, outcome string) {
	sessionStoreOps.WithLabelValues(backend, op, outcome).Inc()
}

// IncItemStarted counts an item started under the given filter.
func IncItemStarted(filter string) {
	itemsStarted.WithLabelValues(filter).Inc()
}

// ObserveHTTP records one served HTTP request. route should be the router
// pattern, not the raw path, to bound label cardinality.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns its decrement.
func TrackInFlight() func() {
	httpRequestsInFlight.Inc()
	return httpRequestsInFlight.Dec
}

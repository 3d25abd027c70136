// Package metrics defines the Prometheus instruments exported by
// gigplane-engine at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// LifecycleOperations counts proposal lifecycle operations by outcome.
	LifecycleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_lifecycle_operations_total",
			Help: "Total number of proposal lifecycle operations",
		},
		[]string{"operation", "outcome"}, // operation: submit, accept, reject; outcome: success, conflict, invalid_state, forbidden, not_found, error
	)

	// EventsPublished counts lifecycle events published to the broker.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of lifecycle events published",
		},
		[]string{"routing_key", "status"}, // status: success, failed
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordLifecycleOperation increments the lifecycle operation counter.
func RecordLifecycleOperation(operation, outcome string) {
	LifecycleOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordEventPublished increments the published-event counter.
func RecordEventPublished(routingKey, status string) {
	EventsPublished.WithLabelValues(routingKey, status).Inc()
}

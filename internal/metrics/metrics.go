// Package metrics defines the Prometheus metrics exposed by the inference
// service: two process-lifetime monotonic counters, one for predictions
// served and one for requests where drift was flagged. Both are exposed on
// the /metrics endpoint for external scraping and are never reset except by
// process restart.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Counter increments
// are atomic, so concurrent request goroutines share this without locking.
type Metrics struct {
	PredictionCount prometheus.Counter // Total predictions served
	DriftCount      prometheus.Counter // Total requests with drift flagged
}

// New creates and registers all metrics using the default registry.
// This is the standard way to create metrics for production use.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows for isolated metric collection in tests without affecting
// the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_count",
			Help: "Total number of predictions served",
		}),
		DriftCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "drift_count",
			Help: "Total number of requests where data drift was detected",
		}),
	}
}

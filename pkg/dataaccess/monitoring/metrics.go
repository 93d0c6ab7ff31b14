package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLatency is the duration of state store operations.
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_store_latency",
			Help: "Duration of state store operations",
		},
		[]string{"backend", "operation"},
	)

	// StoreTotalRequests is the total number of state store operations.
	StoreTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_store_total_requests",
			Help: "Total number of state store operations",
		},
		[]string{"backend", "operation"},
	)

	// StoreErrors is the total number of failed state store operations.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_store_errors",
			Help: "Total number of failed state store operations",
		},
		[]string{"backend", "operation"},
	)
)

// Observe starts the metrics for a store operation. The returned function
// must be called with the operation's error once it completes.
func Observe(backend, operation string) func(err error) {
	StoreTotalRequests.WithLabelValues(backend, operation).Inc()
	t := prometheus.NewTimer(StoreLatency.WithLabelValues(backend, operation))
	return func(err error) {
		t.ObserveDuration()
		if err != nil {
			StoreErrors.WithLabelValues(backend, operation).Inc()
		}
	}
}

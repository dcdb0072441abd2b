package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// operationDuration tracks binding operation latency in seconds.
	// Labels: operation, status
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ycsb_operation_duration_seconds",
			Help:    "Binding operation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		},
		[]string{"operation", "status"},
	)

	// operationsTotal tracks the total number of binding operations.
	// Labels: operation, status
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ycsb_operations_total",
			Help: "Total number of binding operations",
		},
		[]string{"operation", "status"},
	)
)

// RecordOperation records one binding operation outcome. It updates the
// latency histogram and the operation counter with the given labels.
func RecordOperation(operation, status string, duration time.Duration) {
	operationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	operationsTotal.WithLabelValues(operation, status).Inc()
}

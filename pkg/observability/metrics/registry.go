// Package metrics provides Prometheus metrics for benchmark operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
)

// Registry manages Prometheus metrics registration for a benchmark run.
// Besides the operation metrics it includes Go runtime collectors, so a
// run summary can report allocation and GC pressure alongside latencies.
type Registry struct {
	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with the operation metrics and
// default runtime collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(operationDuration)
	reg.MustRegister(operationsTotal)

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Registry{registry: reg}
}

// Register registers a custom Prometheus collector.
func (r *Registry) Register(collector prometheus.Collector) error {
	return r.registry.Register(collector)
}

// MustRegister registers custom Prometheus collectors and panics on error.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Unregister removes a collector from the registry, primarily for tests.
func (r *Registry) Unregister(collector prometheus.Collector) bool {
	return r.registry.Unregister(collector)
}

// Gather collects the current state of all registered metrics.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

package metrics

import (
	mountRegistry "github.com/marmos91/davmount/pkg/registry"
)

// NewRegistryMetrics creates a new Prometheus-backed RegistryMetrics
// instance for the mount registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to the mount registry,
// which results in zero overhead.
func NewRegistryMetrics() mountRegistry.RegistryMetrics {
	if !IsEnabled() || newPrometheusRegistryMetrics == nil {
		return nil
	}
	return newPrometheusRegistryMetrics()
}

// newPrometheusRegistryMetrics is implemented in pkg/metrics/prometheus/registry.go
// This indirection avoids import cycles while keeping the API clean
var newPrometheusRegistryMetrics func() mountRegistry.RegistryMetrics

// RegisterRegistryMetricsConstructor registers the Prometheus mount registry
// metrics constructor.
// Called by pkg/metrics/prometheus/registry.go during package initialization.
func RegisterRegistryMetricsConstructor(constructor func() mountRegistry.RegistryMetrics) {
	newPrometheusRegistryMetrics = constructor
}

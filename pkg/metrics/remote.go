package metrics

import (
	"github.com/marmos91/davmount/pkg/remote"
)

// NewRemoteMetrics creates a new Prometheus-backed RemoteMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to remote.Instrumented,
// which leaves clients unwrapped for zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	factory := remote.InstrumentedFactory(webdav.New, metrics.NewRemoteMetrics())
//
//	// Without metrics (zero overhead)
//	factory := remote.InstrumentedFactory(webdav.New, nil)
func NewRemoteMetrics() remote.RemoteMetrics {
	if !IsEnabled() || newPrometheusRemoteMetrics == nil {
		return nil
	}
	return newPrometheusRemoteMetrics()
}

// newPrometheusRemoteMetrics is implemented in pkg/metrics/prometheus/remote.go
// This indirection avoids import cycles while keeping the API clean
var newPrometheusRemoteMetrics func() remote.RemoteMetrics

// RegisterRemoteMetricsConstructor registers the Prometheus remote metrics constructor.
// Called by pkg/metrics/prometheus/remote.go during package initialization.
func RegisterRemoteMetricsConstructor(constructor func() remote.RemoteMetrics) {
	newPrometheusRemoteMetrics = constructor
}

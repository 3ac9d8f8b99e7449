package metrics

import (
	"github.com/marmos91/davmount/pkg/cache"
)

// NewCacheMetrics creates a new Prometheus-backed CacheMetrics instance
// bound to one mount. Every instance shares the underlying collectors;
// the mount identifier becomes a label.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to cache implementations,
// which results in zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	metadataCache := cache.New(metrics.NewCacheMetrics(mountID))
//
//	// Without metrics (zero overhead)
//	metadataCache := cache.New(nil)
func NewCacheMetrics(mount string) cache.CacheMetrics {
	if !IsEnabled() || newPrometheusCacheMetrics == nil {
		return nil
	}
	return newPrometheusCacheMetrics(mount)
}

// newPrometheusCacheMetrics is implemented in pkg/metrics/prometheus/cache.go
// This indirection avoids import cycles while keeping the API clean
var newPrometheusCacheMetrics func(mount string) cache.CacheMetrics

// RegisterCacheMetricsConstructor registers the Prometheus cache metrics constructor.
// Called by pkg/metrics/prometheus/cache.go during package initialization.
func RegisterCacheMetricsConstructor(constructor func(mount string) cache.CacheMetrics) {
	newPrometheusCacheMetrics = constructor
}

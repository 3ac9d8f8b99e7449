package metrics

import (
	"github.com/marmos91/davmount/pkg/upload"
)

// NewUploadMetrics creates a new Prometheus-backed UploadMetrics instance
// bound to one mount. Every instance shares the underlying collectors;
// the mount identifier becomes a label.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to the upload manager,
// which results in zero overhead.
func NewUploadMetrics(mount string) upload.UploadMetrics {
	if !IsEnabled() || newPrometheusUploadMetrics == nil {
		return nil
	}
	return newPrometheusUploadMetrics(mount)
}

// newPrometheusUploadMetrics is implemented in pkg/metrics/prometheus/upload.go
// This indirection avoids import cycles while keeping the API clean
var newPrometheusUploadMetrics func(mount string) upload.UploadMetrics

// RegisterUploadMetricsConstructor registers the Prometheus upload metrics constructor.
// Called by pkg/metrics/prometheus/upload.go during package initialization.
func RegisterUploadMetricsConstructor(constructor func(mount string) upload.UploadMetrics) {
	newPrometheusUploadMetrics = constructor
}

package prometheus

import (
	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/marmos91/davmount/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterRegistryMetricsConstructor(newRegistryMetrics)
}

// registryMetrics is the Prometheus implementation of
// registry.RegistryMetrics. One instance serves the single mount registry,
// so it must be created at most once per process.
type registryMetrics struct {
	mountOperations *prometheus.CounterVec
	activeMounts    prometheus.Gauge
	openHandles     prometheus.Gauge
}

// newRegistryMetrics creates a new Prometheus-backed RegistryMetrics instance.
// Registered with pkg/metrics during package initialization; call
// metrics.NewRegistryMetrics() instead of this directly.
func newRegistryMetrics() registry.RegistryMetrics {
	reg := metrics.GetRegistry()

	return &registryMetrics{
		mountOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "davmount_mount_operations_total",
				Help: "Total number of mount lifecycle operations by outcome",
			},
			[]string{"op", "outcome"}, // op: "mount", "unmount", "resume"
		),
		activeMounts: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "davmount_active_mounts",
				Help: "Current number of active mounts",
			},
		),
		openHandles: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "davmount_open_handles",
				Help: "Current number of open file handles across all mounts",
			},
		),
	}
}

func (m *registryMetrics) RecordMountOperation(op string, outcome string) {
	m.mountOperations.WithLabelValues(op, outcome).Inc()
}

func (m *registryMetrics) RecordMounts(count int) {
	m.activeMounts.Set(float64(count))
}

func (m *registryMetrics) RecordHandles(count int) {
	m.openHandles.Set(float64(count))
}

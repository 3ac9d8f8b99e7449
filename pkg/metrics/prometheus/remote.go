package prometheus

import (
	"time"

	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/marmos91/davmount/pkg/remote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterRemoteMetricsConstructor(newRemoteMetrics)
}

// remoteMetrics is the Prometheus implementation of remote.RemoteMetrics.
// One instance is shared by every client built through the instrumented
// factory, so it must be created at most once per process.
type remoteMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
}

// newRemoteMetrics creates a new Prometheus-backed RemoteMetrics instance.
// Registered with pkg/metrics during package initialization; call
// metrics.NewRemoteMetrics() instead of this directly.
func newRemoteMetrics() remote.RemoteMetrics {
	reg := metrics.GetRegistry()

	return &remoteMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "davmount_remote_operations_total",
				Help: "Total number of remote client calls by operation and outcome",
			},
			[]string{"op", "status", "error_code"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "davmount_remote_operation_duration_milliseconds",
				Help: "Duration of remote client calls in milliseconds",
				Buckets: []float64{
					1,     // 1ms
					10,    // 10ms
					100,   // 100ms
					1000,  // 1s
					10000, // 10s
				},
			},
			[]string{"op"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "davmount_remote_bytes_transferred_total",
				Help: "Total payload bytes moved by remote client calls",
			},
			[]string{"op", "direction"},
		),
	}
}

func (m *remoteMetrics) RecordOperation(op string, duration time.Duration, errorCode string) {
	status := "success"
	if errorCode != "" {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(op, status, errorCode).Inc()
	m.operationDuration.WithLabelValues(op).Observe(duration.Seconds() * 1000) // Convert to milliseconds
}

func (m *remoteMetrics) RecordBytesTransferred(op string, direction string, bytes int) {
	m.bytesTransferred.WithLabelValues(op, direction).Add(float64(bytes))
}

package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/marmos91/davmount/pkg/upload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterUploadMetricsConstructor(newUploadMetrics)
}

// Upload collectors are registered once and shared by every mount; each
// uploadMetrics instance binds the mount label.
var (
	uploadCollectorsOnce  sync.Once
	uploadSessionsOpened  *prometheus.CounterVec
	uploadSessionsClosed  *prometheus.CounterVec
	uploadSessionDuration *prometheus.HistogramVec
	uploadChunksTotal     *prometheus.CounterVec
	uploadChunkBytes      *prometheus.HistogramVec
	uploadActiveSessions  *prometheus.GaugeVec
	uploadSweepsTotal     *prometheus.CounterVec
	uploadSweptTotal      *prometheus.CounterVec
)

func uploadCollectors() {
	reg := metrics.GetRegistry()

	uploadSessionsOpened = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "davmount_upload_sessions_opened_total",
			Help: "Total number of upload sessions opened per mount",
		},
		[]string{"mount"},
	)
	uploadSessionsClosed = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "davmount_upload_sessions_closed_total",
			Help: "Total number of upload sessions closed by outcome",
		},
		[]string{"mount", "outcome"}, // outcome: "committed", "aborted"
	)
	uploadSessionDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "davmount_upload_session_duration_seconds",
			Help: "Lifetime of upload sessions from open to close",
			Buckets: []float64{
				1,    // 1s - small files
				10,   // 10s
				60,   // 1min
				600,  // 10min
				3600, // 1h - large uploads over slow links
			},
		},
		[]string{"mount", "outcome"},
	)
	uploadChunksTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "davmount_upload_chunks_total",
			Help: "Total number of chunks staged per mount",
		},
		[]string{"mount"},
	)
	uploadChunkBytes = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "davmount_upload_chunk_bytes",
			Help: "Distribution of staged chunk sizes",
			Buckets: []float64{
				4096,     // 4KB
				65536,    // 64KB
				1048576,  // 1MB
				10485760, // 10MB
			},
		},
		[]string{"mount"},
	)
	uploadActiveSessions = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "davmount_upload_active_sessions",
			Help: "Current number of active upload sessions per mount",
		},
		[]string{"mount"},
	)
	uploadSweepsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "davmount_upload_sweeps_total",
			Help: "Total number of sweeper passes per mount",
		},
		[]string{"mount"},
	)
	uploadSweptTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "davmount_upload_swept_sessions_total",
			Help: "Total number of stale staging areas removed by the sweeper",
		},
		[]string{"mount"},
	)
}

// uploadMetrics is the Prometheus implementation of upload.UploadMetrics
// for one mount.
type uploadMetrics struct {
	mount string
}

// newUploadMetrics creates an UploadMetrics instance bound to mount.
// Registered with pkg/metrics during package initialization; call
// metrics.NewUploadMetrics() instead of this directly.
func newUploadMetrics(mount string) upload.UploadMetrics {
	uploadCollectorsOnce.Do(uploadCollectors)
	return &uploadMetrics{mount: mount}
}

func (m *uploadMetrics) RecordSessionOpened() {
	uploadSessionsOpened.WithLabelValues(m.mount).Inc()
}

func (m *uploadMetrics) RecordSessionClosed(outcome string, duration time.Duration) {
	uploadSessionsClosed.WithLabelValues(m.mount, outcome).Inc()
	uploadSessionDuration.WithLabelValues(m.mount, outcome).Observe(duration.Seconds())
}

func (m *uploadMetrics) RecordChunk(bytes int) {
	uploadChunksTotal.WithLabelValues(m.mount).Inc()
	uploadChunkBytes.WithLabelValues(m.mount).Observe(float64(bytes))
}

func (m *uploadMetrics) RecordActiveSessions(count int) {
	uploadActiveSessions.WithLabelValues(m.mount).Set(float64(count))
}

func (m *uploadMetrics) RecordSweep(swept int) {
	uploadSweepsTotal.WithLabelValues(m.mount).Inc()
	uploadSweptTotal.WithLabelValues(m.mount).Add(float64(swept))
}

package prometheus

import (
	"time"

	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// providerMetrics is the Prometheus implementation of metrics.ProviderMetrics.
type providerMetrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	requestsInFlight    *prometheus.GaugeVec
	activeConnections   prometheus.Gauge
	connectionsAccepted prometheus.Counter
	connectionsClosed   prometheus.Counter
	eventsTotal         *prometheus.CounterVec
}

// NewProviderMetrics creates a new Prometheus-backed ProviderMetrics instance.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry
// not called). The provider server serves a single process, so this must be
// called at most once.
func NewProviderMetrics() metrics.ProviderMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopProviderMetrics()
	}

	reg := metrics.GetRegistry()

	return &providerMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "davmount_provider_requests_total",
				Help: "Total number of provider requests by procedure, mount, and status",
			},
			[]string{"procedure", "mount", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "davmount_provider_request_duration_milliseconds",
				Help: "Duration of provider requests in milliseconds",
				Buckets: []float64{
					1,     // 1ms
					10,    // 10ms
					100,   // 100ms
					1000,  // 1s
					10000, // 10s
				},
			},
			[]string{"procedure"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "davmount_provider_requests_in_flight",
				Help: "Current number of provider requests being processed",
			},
			[]string{"procedure"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "davmount_provider_active_connections",
				Help: "Current number of active provider connections",
			},
		),
		connectionsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "davmount_provider_connections_accepted_total",
				Help: "Total number of provider connections accepted",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "davmount_provider_connections_closed_total",
				Help: "Total number of provider connections closed",
			},
		),
		eventsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "davmount_provider_events_total",
				Help: "Total number of change events pushed to providers",
			},
			[]string{"kind"},
		),
	}
}

func (m *providerMetrics) RecordRequest(procedure string, mount string, duration time.Duration, status string) {
	m.requestsTotal.WithLabelValues(procedure, mount, status).Inc()
	m.requestDuration.WithLabelValues(procedure).Observe(duration.Seconds() * 1000) // Convert to milliseconds
}

func (m *providerMetrics) RecordRequestStart(procedure string) {
	m.requestsInFlight.WithLabelValues(procedure).Inc()
}

func (m *providerMetrics) RecordRequestEnd(procedure string) {
	m.requestsInFlight.WithLabelValues(procedure).Dec()
}

func (m *providerMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *providerMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *providerMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}

func (m *providerMetrics) RecordEvent(kind string) {
	m.eventsTotal.WithLabelValues(kind).Inc()
}

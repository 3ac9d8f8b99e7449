package config

import (
	"github.com/marmos91/davmount/pkg/metrics"
	promMetrics "github.com/marmos91/davmount/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// ProviderMetrics is the metrics collector for the provider adapter
	// (never nil, uses noop if disabled)
	ProviderMetrics metrics.ProviderMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for the provider adapter
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
//
// The per-mount registry, cache, and upload collectors are not created here;
// the mount registry builds them lazily through the constructors in
// pkg/metrics, which also return no-ops when the registry is disabled.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		// Metrics disabled - return no-op implementations
		return &MetricsResult{
			Server:          nil,
			ProviderMetrics: metrics.NewNoopProviderMetrics(),
		}
	}

	// Initialize global Prometheus registry
	metrics.InitRegistry()

	// Create metrics HTTP server
	server := metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Metrics.Port,
	})

	// Create Prometheus-backed metrics for the provider adapter
	providerMetrics := promMetrics.NewProviderMetrics()

	return &MetricsResult{
		Server:          server,
		ProviderMetrics: providerMetrics,
	}
}

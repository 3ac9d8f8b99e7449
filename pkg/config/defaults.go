package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/bytesize"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/registry"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyProfilingDefaults(&cfg.Profiling)
	applyShutdownTimeoutDefaults(cfg)
	applyProviderDefaults(&cfg.Provider)
	applyAPIDefaults(cfg)
	applyMetricsDefaults(&cfg.Metrics)
	applyMountsStoreDefaults(&cfg.MountsStore)
	applyControlPlaneDBDefaults(&cfg.ControlPlaneDB)
	applyUploadDefaults(&cfg.Upload)
	applyAdminDefaults(&cfg.Admin)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in for telemetry)

	// Default endpoint is localhost:4317 (standard OTLP gRPC port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	// Default sample rate is 1.0 (sample all traces)
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	// Enabled defaults to false (opt-in for profiling)

	// Default endpoint is localhost:4040 (standard Pyroscope port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	// Default profile types include CPU, memory allocation, and goroutines
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyProviderDefaults sets provider server defaults.
func applyProviderDefaults(cfg *provider.Config) {
	if cfg.Listen == "" {
		cfg.Listen = provider.DefaultListen
	}
	if cfg.MaxFrameBytes == 0 {
		cfg.MaxFrameBytes = bytesize.ByteSize(provider.DefaultMaxFrameBytes)
	}
	if cfg.MaxRequestsPerConnection == 0 {
		cfg.MaxRequestsPerConnection = provider.DefaultMaxRequestsPerConnection
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = provider.DefaultShutdownTimeout
	}
}

// applyAPIDefaults sets control plane API server defaults.
// The API stays disabled until a JWT secret is configured; defaults here
// only fill in the listen address and timeouts.
func applyAPIDefaults(cfg *Config) {
	cfg.API.ApplyDefaults()
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	// Port defaults to 9464 if metrics are enabled
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9464
	}
}

// applyMountsStoreDefaults sets mount store defaults.
func applyMountsStoreDefaults(cfg *MountsStoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "badger"
	}

	// Badger needs a database directory; default to the XDG data dir so
	// mounts survive restarts out of the box.
	if cfg.Type == "badger" {
		if cfg.Badger == nil {
			cfg.Badger = map[string]any{}
		}
		if p, _ := cfg.Badger["db_path"].(string); p == "" {
			cfg.Badger["db_path"] = filepath.Join(getDataDir(), "mounts")
		}
	}
}

// applyControlPlaneDBDefaults sets control plane database defaults.
func applyControlPlaneDBDefaults(cfg *store.Config) {
	cfg.ApplyDefaults()
}

// applyUploadDefaults sets upload staging defaults.
func applyUploadDefaults(cfg *UploadConfig) {
	if cfg.StagingRoot == "" {
		cfg.StagingRoot = registry.DefaultStagingRoot
	}
	if cfg.Sweep.Interval == 0 {
		cfg.Sweep.Interval = time.Hour
	}
	if cfg.Sweep.OrphanTTL == 0 {
		cfg.Sweep.OrphanTTL = 24 * time.Hour
	}
}

// applyAdminDefaults sets admin user defaults.
func applyAdminDefaults(cfg *AdminConfig) {
	// Default username is "admin"
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
	// PasswordHash has no default - it's set during init
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{},
		MountsStore: MountsStoreConfig{
			Type: "badger", // Mount records survive restarts by default
		},
		ControlPlaneDB: store.Config{
			Type: store.DatabaseTypeSQLite, // Default to SQLite for single-node
		},
		Admin: AdminConfig{
			Username: "admin",
		},
	}

	ApplyDefaults(cfg)
	return cfg
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/adapter/provider/handlers"
	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/internal/telemetry"
	"github.com/marmos91/davmount/pkg/config"
	"github.com/marmos91/davmount/pkg/controlplane/api"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/spf13/cobra"
)

var foreground bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the DavMount daemon",
	Long: `Start the DavMount daemon with the specified configuration.

The daemon runs in the foreground; use your service manager (systemd,
launchd) for background operation.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/davmount/config.yaml.

Examples:
  # Start with default config location
  davmount start

  # Start with custom config file
  davmount start --config /etc/davmount/config.yaml

  # Start with environment variable overrides
  DAVMOUNT_LOGGING_LEVEL=DEBUG davmount start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", true, "Run in foreground (the only supported mode; accepted for service managers)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled). Must happen before the
	// registry so remote clients pick up the tracing decorator.
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "davmount",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Profiling.Enabled,
		ServiceName:    "davmount",
		ServiceVersion: Version,
		Endpoint:       cfg.Profiling.Endpoint,
		ProfileTypes:   cfg.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	fmt.Println("DavMount - Remote document servers as local filesystems")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Profiling.Endpoint, "profile_types", cfg.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics FIRST: the registry builds per-mount collectors
	// during resume, which needs metrics.IsEnabled() already settled.
	metricsResult := config.InitializeMetrics(cfg)

	// Initialize the mount registry; persisted mounts are resumed here.
	reg, mountStore, err := config.InitializeRegistry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	defer func() {
		reg.Close()
		if err := mountStore.Close(); err != nil {
			logger.Error("mount store close error", logger.Err(err))
		}
	}()

	// Control plane store holds API user accounts
	cpStore, err := store.New(&cfg.ControlPlaneDB)
	if err != nil {
		return fmt.Errorf("failed to initialize control plane store: %w", err)
	}
	defer func() {
		if err := cpStore.Close(); err != nil {
			logger.Error("control plane store close error", logger.Err(err))
		}
	}()

	// Create the initial admin account on an empty user store
	adminPassword, err := config.BootstrapAdmin(ctx, cpStore, cfg.Admin)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}
	if adminPassword != "" {
		logger.Info("Admin user created", logger.KeyUsername, cfg.Admin.Username)
		fmt.Printf("\n*** IMPORTANT: Admin user created with password: %s ***\n", adminPassword)
		fmt.Println("Please save this password. It will not be shown again.")
		fmt.Println()
	}

	// Provider server: the host-facing filesystem surface
	dispatcher := provider.NewDispatcher(reg, handlers.New(reg), metricsResult.ProviderMetrics)
	providerSrv := provider.NewServer(cfg.Provider, dispatcher, metricsResult.ProviderMetrics)

	// Mount lifecycle events reach connected hosts through the server
	reg.SetEvents(providerSrv)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- providerSrv.Serve(ctx)
	}()

	// Control API (requires a JWT secret)
	var apiDone chan error
	if cfg.API.IsEnabled() {
		apiServer, err := api.NewServer(cfg.API, reg, cpStore, Version)
		if err != nil {
			return fmt.Errorf("failed to create API server: %w", err)
		}
		apiDone = make(chan error, 1)
		go func() {
			apiDone <- apiServer.Start(ctx)
		}()
	} else {
		logger.Info("API server disabled (no JWT secret configured)")
	}

	// Prometheus metrics endpoint
	var metricsDone chan error
	if metricsResult.Server != nil {
		metricsDone = make(chan error, 1)
		go func() {
			metricsDone <- metricsResult.Server.Start(ctx)
		}()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Daemon is running. Press Ctrl+C to stop.")

	var runErr error
	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

	case runErr = <-serverDone:
		serverDone = nil
		signal.Stop(sigChan)
		if runErr != nil {
			logger.Error("Provider server error", logger.Err(runErr))
		}
		cancel()

	case runErr = <-apiDone:
		apiDone = nil
		signal.Stop(sigChan)
		if runErr != nil {
			logger.Error("API server error", logger.Err(runErr))
		}
		cancel()

	case runErr = <-metricsDone:
		metricsDone = nil
		signal.Stop(sigChan)
		if runErr != nil {
			logger.Error("Metrics server error", logger.Err(runErr))
		}
		cancel()
	}

	// Drain the remaining components, bounded by the shutdown timeout.
	// Each server enforces its own internal drain deadline as well.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	waitFor := func(ch chan error, name string) {
		if ch == nil {
			return
		}
		select {
		case err := <-ch:
			if err != nil {
				logger.Error(name+" shutdown error", logger.Err(err))
				if runErr == nil {
					runErr = err
				}
			}
		case <-shutdownCtx.Done():
			logger.Warn("shutdown timeout waiting for " + name)
			if runErr == nil {
				runErr = fmt.Errorf("shutdown timeout waiting for %s", name)
			}
		}
	}

	waitFor(serverDone, "provider server")
	waitFor(apiDone, "API server")
	waitFor(metricsDone, "metrics server")

	if runErr != nil {
		return runErr
	}

	logger.Info("Daemon stopped gracefully")
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

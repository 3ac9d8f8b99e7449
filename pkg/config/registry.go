package config

import (
	"context"
	"fmt"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/marmos91/davmount/pkg/registry"
	"github.com/marmos91/davmount/pkg/remote"
	"github.com/marmos91/davmount/pkg/remote/webdav"
	"github.com/marmos91/davmount/pkg/store/mounts"
	"github.com/marmos91/davmount/pkg/upload"
)

// InitializeRegistry creates a fully configured mount registry from the
// provided configuration.
//
// This function orchestrates the complete initialization process:
//  1. Creates the mount record store from cfg.MountsStore
//  2. Builds the registry wired with the WebDAV client factory, upload
//     staging settings, and metric sinks
//  3. Resumes every persisted mount record
//
// The returned store backs the registry and must be closed by the caller
// after the registry shuts down; the registry deliberately does not own
// the store's lifecycle so records survive restarts.
//
// Parameters:
//   - ctx: Context for cancellation during store open and mount resume
//   - cfg: Complete configuration loaded from config file
//
// Returns:
//   - *registry.Registry: Fully initialized registry with resumed mounts
//   - mounts.Store: The record store backing the registry
//   - error: If store creation or registry construction fails
//
// Resume failures for individual records are logged and skipped, not
// returned: one unreachable document server must not keep every other
// mount offline.
func InitializeRegistry(ctx context.Context, cfg *Config) (*registry.Registry, mounts.Store, error) {
	logger.Debug("initializing mount registry from configuration")

	mountStore, err := CreateMountStore(ctx, cfg.MountsStore)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mount store: %w", err)
	}

	// Every client the factory builds reports to the shared remote metrics
	// and, when tracing is on, runs each call inside a remote span.
	factory := remote.InstrumentedFactory(webdav.New, metrics.NewRemoteMetrics())
	factory = remote.TracedFactory(factory)

	regCfg := registry.Config{
		Store:              mountStore,
		Factory:            factory,
		ClientTimeout:      cfg.Remote.HTTPTimeout,
		InsecureSkipVerify: cfg.Remote.InsecureSkipVerify,
		StagingRoot:        cfg.Upload.StagingRoot,
		Metrics:            metrics.NewRegistryMetrics(),
		CacheMetrics:       metrics.NewCacheMetrics,
		UploadMetrics:      metrics.NewUploadMetrics,
	}

	if cfg.Upload.Sweep.IsEnabled() {
		regCfg.Sweep = &upload.SweeperConfig{
			Interval:  cfg.Upload.Sweep.Interval,
			OrphanTTL: cfg.Upload.Sweep.OrphanTTL,
		}
	}

	reg, err := registry.New(regCfg)
	if err != nil {
		_ = mountStore.Close()
		return nil, nil, fmt.Errorf("failed to create registry: %w", err)
	}

	// Resume failures are not fatal: one unreachable document server must
	// not keep the daemon (and every other mount) offline.
	if err := reg.ResumeMounts(ctx); err != nil {
		logger.Warn("some mounts could not be resumed", logger.Err(err))
	}
	logger.Info("mount registry initialized", logger.KeyMounts, reg.CountMounts())

	return reg, mountStore, nil
}

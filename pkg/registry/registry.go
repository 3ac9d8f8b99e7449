// Package registry owns the set of active mounts.
//
// A mount binds one remote server/account pair to a remote client, a
// metadata cache, and an open-handle table. The registry is the sole owner
// of that state: mounts are created through Mount (or rebuilt through
// ResumeMounts at startup), looked up by their deterministic ID, and torn
// down through Unmount. Successful mounts are persisted so the daemon can
// resume them after a restart.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/cache"
	"github.com/marmos91/davmount/pkg/remote"
	"github.com/marmos91/davmount/pkg/store/mounts"
	"github.com/marmos91/davmount/pkg/upload"
)

// DefaultStagingRoot is the remote collection that holds every mount's
// upload staging areas when no other root is configured.
const DefaultStagingRoot = "/.davmount-uploads"

// MountConfig carries everything needed to establish one mount.
type MountConfig struct {
	// Name is the human-facing display name.
	Name string

	// URL is the base URL of the remote document server.
	URL string

	// Username and Password authenticate against the server.
	Username string
	Password string

	// Writable controls whether mutating procedures are allowed.
	Writable bool
}

// Validate checks that the configuration can identify and reach a server.
// URL validity is checked by the client factory; here only the fields the
// registry itself depends on are enforced.
func (c *MountConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("mount name is required")
	}
	if c.URL == "" {
		return fmt.Errorf("mount URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("mount username is required")
	}
	return nil
}

// ID computes the deterministic mount identifier for this configuration.
func (c *MountConfig) ID() mounts.MountID {
	return mounts.ComputeID(c.URL, c.Username)
}

// Events receives mount lifecycle notifications. The provider server
// implements this to push mount_added / mount_removed frames to connected
// hosts; all methods must be non-blocking.
type Events interface {
	MountAdded(m *Mount)
	MountRemoved(id mounts.MountID, name string)
}

// Config assembles a Registry's collaborators. Store and Factory are
// required; everything else may be zero.
type Config struct {
	// Store persists mount records across restarts.
	Store mounts.Store

	// Factory builds a remote client for each mount.
	Factory remote.Factory

	// ClientTimeout and InsecureSkipVerify are passed through to every
	// client the factory builds.
	ClientTimeout      time.Duration
	InsecureSkipVerify bool

	// StagingRoot is the remote collection for upload staging areas.
	// Defaults to DefaultStagingRoot.
	StagingRoot string

	// Sweep enables background reclamation of orphaned staging areas on
	// every mount. Nil disables sweeping.
	Sweep *upload.SweeperConfig

	// Metrics observes registry operations; may be nil.
	Metrics RegistryMetrics

	// CacheMetrics and UploadMetrics build per-mount metric sinks; either
	// may be nil, and either may return nil.
	CacheMetrics  func(mount string) cache.CacheMetrics
	UploadMetrics func(mount string) upload.UploadMetrics
}

// Registry is the process-wide table of active mounts.
//
// Thread Safety:
// Safe for concurrent use. The mutex guards the mount table; remote
// validation runs outside the lock so a slow server cannot stall lookups
// of other mounts.
type Registry struct {
	store   mounts.Store
	factory remote.Factory
	cfg     Config

	mu     sync.RWMutex
	mounts map[mounts.MountID]*Mount

	eventsMu sync.RWMutex
	events   Events

	metrics RegistryMetrics

	sweepCtx    context.Context
	sweepCancel context.CancelFunc
}

// New creates an empty registry.
func New(cfg Config) (*Registry, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("registry requires a mount-record store")
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("registry requires a remote client factory")
	}
	if cfg.StagingRoot == "" {
		cfg.StagingRoot = DefaultStagingRoot
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		store:       cfg.Store,
		factory:     cfg.Factory,
		cfg:         cfg,
		mounts:      make(map[mounts.MountID]*Mount),
		metrics:     cfg.Metrics,
		sweepCtx:    ctx,
		sweepCancel: cancel,
	}, nil
}

// SetEvents wires the mount surface that receives lifecycle notifications.
// Called once during startup, after the provider server exists; passing nil
// silences events.
func (r *Registry) SetEvents(ev Events) {
	r.eventsMu.Lock()
	r.events = ev
	r.eventsMu.Unlock()
}

// Mount establishes a mount for cfg, or returns the existing one.
//
// Mounting is idempotent on the computed identity: if a mount with the same
// (URL, username) pair is already registered, it is returned unchanged and
// nothing touches the network or the record store. Otherwise the registry
// builds a client, validates connectivity with a root listing (credential
// and connectivity failures propagate and nothing is registered), persists
// the record, and announces the mount.
func (r *Registry) Mount(ctx context.Context, cfg MountConfig) (*Mount, error) {
	if err := cfg.Validate(); err != nil {
		r.recordOp("mount", err)
		return nil, err
	}

	id := cfg.ID()

	r.mu.RLock()
	existing, ok := r.mounts[id]
	r.mu.RUnlock()
	if ok {
		logger.Debug("mount already registered",
			logger.Mount(id), logger.KeyName, existing.Name)
		return existing, nil
	}

	m, err := r.buildMount(ctx, id, cfg)
	if err != nil {
		r.recordOp("mount", err)
		return nil, err
	}

	r.mu.Lock()
	// A concurrent Mount for the same identity may have won the race while
	// this one validated connectivity. First registration wins.
	if existing, ok := r.mounts[id]; ok {
		r.mu.Unlock()
		m.stopSweeper()
		return existing, nil
	}
	r.mounts[id] = m
	count := len(r.mounts)
	r.mu.Unlock()

	rec := &mounts.Record{
		ID:        id,
		Name:      cfg.Name,
		URL:       cfg.URL,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Writable:  cfg.Writable,
		CreatedAt: m.CreatedAt,
	}
	if err := r.store.Save(ctx, rec); err != nil {
		// The mount is live; failing persistence only costs resume.
		logger.Warn("failed to persist mount record",
			logger.Mount(id), logger.Err(err))
	}

	r.recordOp("mount", nil)
	r.recordMounts(count)
	r.notifyAdded(m)

	logger.Info("mount registered",
		logger.Mount(id),
		logger.KeyName, cfg.Name,
		logger.KeyURL, cfg.URL,
		logger.KeyUsername, cfg.Username,
		logger.KeyWritable, cfg.Writable)
	return m, nil
}

// buildMount constructs and validates the runtime mount object. On error
// nothing is registered and no remote state exists beyond the validation
// listing.
func (r *Registry) buildMount(ctx context.Context, id mounts.MountID, cfg MountConfig) (*Mount, error) {
	client, err := r.factory(remote.ClientConfig{
		URL:                cfg.URL,
		Username:           cfg.Username,
		Password:           cfg.Password,
		Timeout:            r.cfg.ClientTimeout,
		InsecureSkipVerify: r.cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("build remote client: %w", err)
	}

	// A root listing proves the URL resolves and the credentials are
	// accepted before anything is registered.
	if _, err := client.List(ctx, "/"); err != nil {
		return nil, fmt.Errorf("validate mount %q: %w", cfg.Name, err)
	}

	var cacheMetrics cache.CacheMetrics
	if r.cfg.CacheMetrics != nil {
		cacheMetrics = r.cfg.CacheMetrics(id.String())
	}
	var uploadMetrics upload.UploadMetrics
	if r.cfg.UploadMetrics != nil {
		uploadMetrics = r.cfg.UploadMetrics(id.String())
	}

	m := &Mount{
		ID:            id,
		Name:          cfg.Name,
		URL:           cfg.URL,
		Username:      cfg.Username,
		Writable:      cfg.Writable,
		CreatedAt:     time.Now(),
		Client:        client,
		Cache:         cache.New(cacheMetrics),
		stagingRoot:   r.cfg.StagingRoot,
		uploadMetrics: uploadMetrics,
		handles:       make(map[int64]*Handle),
		registry:      r,
	}

	if r.cfg.Sweep != nil {
		m.startSweeper(r.sweepCtx, r.cfg.Sweep)
	}
	return m, nil
}

// ResumeMounts rebuilds every persisted mount, validating each exactly as
// Mount does. One record's failure never stops the others; the first error
// is returned after all records were attempted so startup can log it and
// continue.
func (r *Registry) ResumeMounts(ctx context.Context) error {
	records, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list mount records: %w", err)
	}

	var firstErr error
	resumed := 0
	for _, rec := range records {
		cfg := MountConfig{
			Name:     rec.Name,
			URL:      rec.URL,
			Username: rec.Username,
			Password: rec.Password,
			Writable: rec.Writable,
		}
		if _, err := r.Mount(ctx, cfg); err != nil {
			logger.Warn("failed to resume mount",
				logger.Mount(rec.ID),
				logger.KeyName, rec.Name,
				logger.Err(err))
			r.recordOp("resume", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("resume mount %q: %w", rec.Name, err)
			}
			continue
		}
		r.recordOp("resume", nil)
		resumed++
	}

	logger.Info("mounts resumed",
		logger.KeyResumed, resumed,
		logger.KeyFailed, len(records)-resumed)
	return firstErr
}

// Unmount tears a mount down: it leaves the registry, its open handles are
// drained (write sessions abandoned, never finalized), and its persisted
// record is deleted so the mount does not come back on restart.
func (r *Registry) Unmount(ctx context.Context, id mounts.MountID) error {
	r.mu.Lock()
	m, ok := r.mounts[id]
	if ok {
		delete(r.mounts, id)
	}
	count := len(r.mounts)
	r.mu.Unlock()

	if !ok {
		err := fmt.Errorf("mount %s not found", id)
		r.recordOp("unmount", err)
		return err
	}

	m.stopSweeper()
	abandoned := m.abandonHandles()

	if err := r.store.Delete(ctx, id); err != nil && !mounts.IsNotFound(err) {
		logger.Warn("failed to delete mount record",
			logger.Mount(id), logger.Err(err))
	}

	r.recordOp("unmount", nil)
	r.recordMounts(count)
	r.notifyRemoved(id, m.Name)

	logger.Info("mount removed",
		logger.Mount(id),
		logger.KeyName, m.Name,
		logger.KeyHandles, abandoned)
	return nil
}

// GetMount looks up an active mount by ID.
func (r *Registry) GetMount(id mounts.MountID) (*Mount, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mounts[id]
	return m, ok
}

// ListMounts returns a snapshot of all active mounts.
func (r *Registry) ListMounts() []*Mount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Mount, 0, len(r.mounts))
	for _, m := range r.mounts {
		out = append(out, m)
	}
	return out
}

// CountMounts returns the number of active mounts.
func (r *Registry) CountMounts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mounts)
}

// Close stops every mount's sweeper and abandons all open handles. The
// persisted records survive so the mounts resume on the next start.
func (r *Registry) Close() {
	r.sweepCancel()

	r.mu.Lock()
	all := r.mounts
	r.mounts = make(map[mounts.MountID]*Mount)
	r.mu.Unlock()

	for _, m := range all {
		m.stopSweeper()
		m.abandonHandles()
	}
}

// recordOp publishes a lifecycle operation outcome.
func (r *Registry) recordOp(op string, err error) {
	if r.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.metrics.RecordMountOperation(op, outcome)
}

// recordMounts publishes the active mount count.
func (r *Registry) recordMounts(count int) {
	if r.metrics != nil {
		r.metrics.RecordMounts(count)
	}
}

// recordHandles publishes the open-handle count across all mounts.
func (r *Registry) recordHandles() {
	if r.metrics == nil {
		return
	}
	total := 0
	r.mu.RLock()
	for _, m := range r.mounts {
		total += m.HandleCount()
	}
	r.mu.RUnlock()
	r.metrics.RecordHandles(total)
}

// notifyAdded announces a new mount to the host surface.
func (r *Registry) notifyAdded(m *Mount) {
	r.eventsMu.RLock()
	ev := r.events
	r.eventsMu.RUnlock()
	if ev != nil {
		ev.MountAdded(m)
	}
}

// notifyRemoved announces a removed mount to the host surface.
func (r *Registry) notifyRemoved(id mounts.MountID, name string) {
	r.eventsMu.RLock()
	ev := r.events
	r.eventsMu.RUnlock()
	if ev != nil {
		ev.MountRemoved(id, name)
	}
}

package upload

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/remote"
)

// Configuration defaults
const (
	// defaultSweepInterval is how often the sweeper scans the staging root.
	defaultSweepInterval = time.Hour

	// defaultOrphanTTL is how old a staging collection must be before it is
	// considered orphaned.
	defaultOrphanTTL = 24 * time.Hour
)

// ActiveSessions reports the IDs of sessions that are still live and must
// never be swept, however old their staging collections look.
type ActiveSessions func() []string

// Sweeper reclaims orphaned staging collections left behind by aborted or
// crashed write sessions.
//
// Aborting a session issues no remote call, so its staging collection
// survives on the server. The sweeper periodically lists the staging root
// and deletes child collections that are older than the orphan TTL and do
// not belong to an active session. Per-collection failures are logged and
// skipped; the next pass retries them.
//
// Lifecycle:
//   - Created via NewSweeper() with the mount's client and staging root
//   - Started via Start() which spawns the background goroutine
//   - Stopped via Stop() which cancels the context and waits for completion
//
// Thread Safety:
//   - The sweeper is safe for concurrent use
//   - Uses context cancellation for graceful shutdown
type Sweeper struct {
	client   remote.Client
	root     string
	interval time.Duration
	ttl      time.Duration
	active   ActiveSessions
	metrics  UploadMetrics

	ctx    context.Context    // Context for cancellation (created in Start)
	cancel context.CancelFunc // Cancel function to trigger shutdown
	wg     sync.WaitGroup     // Tracks the main run() goroutine for graceful shutdown
}

// SweeperConfig holds configuration for the sweeper.
type SweeperConfig struct {
	// Interval is how often the staging root is scanned.
	// Default: 1 hour.
	Interval time.Duration

	// OrphanTTL is how old a staging collection must be before it is
	// reclaimed. Default: 24 hours. Must comfortably exceed the longest
	// plausible upload, since age is measured from the collection's
	// modification time.
	OrphanTTL time.Duration
}

// NewSweeper creates a sweeper for one mount's staging root.
//
// The sweeper will not run until Start() is called.
//
// Parameters:
//   - client: Remote client of the mount being swept
//   - stagingRoot: Collection holding the per-session staging dirs
//   - active: Source of live session IDs; may be nil when none can exist
//   - config: Optional configuration. If nil, defaults are used.
//   - m: Metrics sink; may be nil
func NewSweeper(client remote.Client, stagingRoot string, active ActiveSessions, config *SweeperConfig, m UploadMetrics) *Sweeper {
	interval := defaultSweepInterval
	ttl := defaultOrphanTTL

	if config != nil {
		if config.Interval > 0 {
			interval = config.Interval
		}
		if config.OrphanTTL > 0 {
			ttl = config.OrphanTTL
		}
	}

	return &Sweeper{
		client:   client,
		root:     stagingRoot,
		interval: interval,
		ttl:      ttl,
		active:   active,
		metrics:  m,
	}
}

// Start begins the background sweep goroutine.
//
// The sweeper runs until Stop() is called or the parent context is
// cancelled. Start should only be called once; calling it again without
// Stop will leak goroutines.
func (s *Sweeper) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	logger.Info("upload sweeper started",
		logger.KeyStagingDir, s.root,
		"interval", s.interval.String(),
		"orphan_ttl", s.ttl.String())

	s.wg.Add(1)
	go s.run()
}

// Stop gracefully stops the sweeper.
//
// This cancels the context and blocks until the sweep goroutine has
// exited. Stop is safe to call multiple times.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// run is the main sweep loop.
func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep(s.ctx)
		}
	}
}

// sweep scans the staging root once and deletes stale orphans. Returns the
// number of collections removed.
func (s *Sweeper) sweep(ctx context.Context) int {
	children, err := s.client.List(ctx, s.root)
	if err != nil {
		if remote.IsNotFound(err) {
			// No staging root means no write session ever opened here.
			return 0
		}
		logger.Warn("upload sweeper: listing staging root failed",
			logger.KeyStagingDir, s.root, logger.Err(err))
		return 0
	}

	live := make(map[string]bool)
	if s.active != nil {
		for _, id := range s.active() {
			live[id] = true
		}
	}

	cutoff := time.Now().Add(-s.ttl)
	swept := 0

	for _, child := range children {
		// Check context in case we're shutting down
		select {
		case <-ctx.Done():
			return swept
		default:
		}

		if !child.IsDir || live[child.Name] || child.ModTime.After(cutoff) {
			continue
		}

		target := path.Join(s.root, child.Name)
		if err := s.client.Delete(ctx, target); err != nil {
			logger.Warn("upload sweeper: delete failed",
				logger.KeyPath, target, logger.Err(err))
			continue
		}

		logger.Debug("upload sweeper: reclaimed orphaned staging dir",
			logger.KeyPath, target)
		swept++
	}

	if s.metrics != nil {
		s.metrics.RecordSweep(swept)
	}
	if swept > 0 {
		logger.Info("upload sweeper: pass complete",
			logger.KeyStagingDir, s.root, logger.KeySwept, swept)
	}
	return swept
}

package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/davmount/pkg/cache"
	"github.com/marmos91/davmount/pkg/remote"
	"github.com/marmos91/davmount/pkg/store/mounts"
	"github.com/marmos91/davmount/pkg/upload"
)

// AccessMode is how a file handle was opened.
type AccessMode int

const (
	// ModeRead allows ranged reads only.
	ModeRead AccessMode = iota + 1

	// ModeWrite allows chunk writes; the handle carries an upload session.
	ModeWrite
)

// String returns a human-readable mode name.
func (m AccessMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Handle is one open file on a mount, keyed by the host's open-request
// identifier. Concurrent opens of the same path under different request IDs
// are independent handles; the registry enforces nothing beyond request-ID
// uniqueness.
type Handle struct {
	// RequestID is the opaque open-request identifier supplied by the host.
	RequestID int64

	// Path is the absolute remote path the handle addresses.
	Path string

	// Mode is the access mode the handle was opened with.
	Mode AccessMode

	// Session is the chunked upload session backing write handles.
	// Non-nil exactly when Mode is ModeWrite.
	Session *upload.Session

	// OpenedAt is when the handle was created.
	OpenedAt time.Time
}

// Mount is one active mount: the remote client, metadata cache, and
// open-handle table for a single server/account pair.
//
// The registry is the sole owner; Mount pointers handed out by GetMount
// stay valid after an unmount but their handle table is already drained.
//
// Thread Safety:
// Safe for concurrent use. The exported identity fields are written once at
// construction; the handle table is guarded by its own mutex.
type Mount struct {
	// ID is the deterministic mount identifier.
	ID mounts.MountID

	// Name is the human-facing display name.
	Name string

	// URL is the remote server base URL.
	URL string

	// Username is the remote account the mount authenticates as.
	Username string

	// Writable reports whether mutating procedures are allowed.
	Writable bool

	// CreatedAt is when the mount was first registered.
	CreatedAt time.Time

	// Client is the mount's remote client.
	Client remote.Client

	// Cache is the mount's metadata cache.
	Cache *cache.Cache

	stagingRoot   string
	uploadMetrics upload.UploadMetrics
	sweeper       *upload.Sweeper

	mu       sync.RWMutex
	handles  map[int64]*Handle
	registry *Registry
}

// StagingRoot returns the remote collection holding this mount's upload
// staging areas.
func (m *Mount) StagingRoot() string {
	return m.stagingRoot
}

// OpenUploadSession creates a chunked upload session targeting path,
// lazily creating the mount's staging root on first use. Failure means no
// session exists and nothing needs cleanup beyond what the error reports.
func (m *Mount) OpenUploadSession(ctx context.Context, path string) (*upload.Session, error) {
	if err := upload.EnsureStagingRoot(ctx, m.Client, m.stagingRoot); err != nil {
		return nil, err
	}
	return upload.Open(ctx, m.Client, path, m.stagingRoot, m.uploadMetrics)
}

// OpenHandle registers a handle for an open request. The request ID must
// not already have a handle on this mount; the host allocates fresh IDs per
// open, so a duplicate means a protocol violation rather than a retry.
func (m *Mount) OpenHandle(requestID int64, path string, mode AccessMode, session *upload.Session) (*Handle, error) {
	if mode == ModeWrite && session == nil {
		return nil, fmt.Errorf("write handle for %q requires an upload session", path)
	}
	if mode == ModeRead && session != nil {
		return nil, fmt.Errorf("read handle for %q must not carry an upload session", path)
	}

	h := &Handle{
		RequestID: requestID,
		Path:      path,
		Mode:      mode,
		Session:   session,
		OpenedAt:  time.Now(),
	}

	m.mu.Lock()
	if _, exists := m.handles[requestID]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("open request %d already has a handle", requestID)
	}
	m.handles[requestID] = h
	m.mu.Unlock()

	m.registry.recordHandles()
	return h, nil
}

// GetHandle looks up the handle for an open request.
func (m *Mount) GetHandle(requestID int64) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handles[requestID]
	return h, ok
}

// CloseHandle removes and returns the handle for an open request. The
// caller owns any finalization of the handle's upload session; CloseHandle
// only drops the table entry.
func (m *Mount) CloseHandle(requestID int64) (*Handle, bool) {
	m.mu.Lock()
	h, ok := m.handles[requestID]
	if ok {
		delete(m.handles, requestID)
	}
	m.mu.Unlock()

	if ok {
		m.registry.recordHandles()
	}
	return h, ok
}

// Handles returns a snapshot of all open handles on the mount.
func (m *Mount) Handles() []*Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Handle, 0, len(m.handles))
	for _, h := range m.handles {
		out = append(out, h)
	}
	return out
}

// HandleCount returns the number of open handles on the mount.
func (m *Mount) HandleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

// ActiveSessionIDs returns the upload session IDs of all open write
// handles. The sweeper consults this so a long-lived session is never
// mistaken for an orphan.
func (m *Mount) ActiveSessionIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.handles))
	for _, h := range m.handles {
		if h.Session != nil {
			ids = append(ids, h.Session.ID())
		}
	}
	return ids
}

// abandonHandles drains the handle table, aborting the upload session of
// every write handle. Sessions are abandoned, never finalized: unmount must
// not commit half-written documents. Returns the number of sessions
// abandoned.
func (m *Mount) abandonHandles() int {
	m.mu.Lock()
	handles := m.handles
	m.handles = make(map[int64]*Handle)
	m.mu.Unlock()

	abandoned := 0
	for _, h := range handles {
		if h.Session == nil {
			continue
		}
		// A session already closed or aborted by a racing request is fine.
		if err := h.Session.Abort(); err == nil {
			abandoned++
		}
	}

	if len(handles) > 0 {
		m.registry.recordHandles()
	}
	return abandoned
}

// startSweeper begins background reclamation of orphaned staging areas for
// this mount.
func (m *Mount) startSweeper(ctx context.Context, cfg *upload.SweeperConfig) {
	m.sweeper = upload.NewSweeper(m.Client, m.stagingRoot, m.ActiveSessionIDs, cfg, m.uploadMetrics)
	m.sweeper.Start(ctx)
}

// stopSweeper stops the mount's sweeper, if one is running.
func (m *Mount) stopSweeper() {
	if m.sweeper != nil {
		m.sweeper.Stop()
	}
}

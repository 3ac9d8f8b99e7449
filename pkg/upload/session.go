// Package upload implements chunked upload sessions staged on the remote
// server.
//
// A write-mode open creates a Session: a staging collection on the remote
// named by a fresh session ID. Each write stores one chunk object whose
// name encodes its byte range; closing the session issues a single MOVE of
// the completion object, which the server answers by assembling the chunks
// into the target path. Aborting issues no remote call and leaves the
// staging collection behind for the Sweeper to reclaim.
//
// The staging collection embeds the session ID, never the target path, so
// concurrent sessions against one path cannot see each other's chunks.
package upload

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/davmount/pkg/remote"
)

// State is the lifecycle phase of an upload session.
type State int

const (
	// StateOpen means the staging collection exists and no chunk write has
	// been attempted yet.
	StateOpen State = iota + 1

	// StateAccumulating means at least one chunk write has been attempted.
	StateAccumulating

	// StateFinalizing means Close has issued the completion MOVE and its
	// outcome is pending.
	StateFinalizing

	// StateClosed means the completion MOVE succeeded. Terminal.
	StateClosed

	// StateAborted means the session was abandoned without finalizing.
	// Terminal.
	StateAborted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "Open"
	case StateAccumulating:
		return "Accumulating"
	case StateFinalizing:
		return "Finalizing"
	case StateClosed:
		return "Closed"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Session is one chunked upload: a staging collection accumulating
// byte-range chunk objects until a single completion MOVE commits them to
// the target path.
//
// Thread Safety:
// Safe for concurrent use. The mutex guards the state and the chunk list;
// network calls run outside the lock, so concurrent writes interleave
// freely - their byte ranges, not their arrival order, determine the
// assembled content.
type Session struct {
	mu       sync.Mutex
	id       string
	target   string
	staging  string
	state    State
	chunks   []ChunkRange
	client   remote.Client
	metrics  UploadMetrics
	openedAt time.Time
}

// Open allocates a session ID and creates its staging collection under
// stagingRoot. A MkCol failure fails the open; no session exists after an
// error. Metrics may be nil.
//
// The staging root itself must already exist; see EnsureStagingRoot.
func Open(ctx context.Context, client remote.Client, targetPath, stagingRoot string, m UploadMetrics) (*Session, error) {
	id := uuid.NewString()
	staging := path.Join(stagingRoot, id)

	if err := client.MkCol(ctx, staging); err != nil {
		return nil, fmt.Errorf("create staging collection: %w", err)
	}

	if m != nil {
		m.RecordSessionOpened()
	}

	return &Session{
		id:       id,
		target:   targetPath,
		staging:  staging,
		state:    StateOpen,
		client:   client,
		metrics:  m,
		openedAt: time.Now(),
	}, nil
}

// ID returns the session identifier, a UUID unique across concurrent
// opens.
func (s *Session) ID() string { return s.id }

// TargetPath returns the path the upload commits to on close.
func (s *Session) TargetPath() string { return s.target }

// StagingDir returns the remote staging collection path.
func (s *Session) StagingDir() string { return s.staging }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Chunks returns a copy of the recorded chunk ranges in write-completion
// order.
func (s *Session) Chunks() []ChunkRange {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ChunkRange, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Write stages data as one chunk object covering
// [offset, offset+len(data)). Chunks may arrive out of order, with gaps,
// or overlapping; no contiguity is enforced here because assembly is the
// server's concern. A failed write leaves the session accumulating, so the
// same range may be retried.
func (s *Session) Write(ctx context.Context, offset int64, data []byte) error {
	if offset < 0 {
		return fmt.Errorf("upload session: negative offset %d", offset)
	}

	s.mu.Lock()
	if s.state != StateOpen && s.state != StateAccumulating {
		state := s.state
		s.mu.Unlock()
		return &StateError{Op: "write", State: state}
	}
	s.state = StateAccumulating
	s.mu.Unlock()

	chunk := ChunkRange{Start: offset, End: offset + int64(len(data))}
	name := ChunkName(chunk.Start, chunk.End)
	if err := s.client.Put(ctx, path.Join(s.staging, name), data); err != nil {
		return fmt.Errorf("stage chunk %s: %w", name, err)
	}

	s.mu.Lock()
	s.chunks = append(s.chunks, chunk)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordChunk(len(data))
	}
	return nil
}

// Close commits the session with a single MOVE of the completion object to
// the target path. The server assembles the staged chunks and atomically
// replaces any prior resource at the target; no verification pass follows.
// A failed MOVE returns the session to accumulating so Close may be
// retried.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateOpen && s.state != StateAccumulating {
		state := s.state
		s.mu.Unlock()
		return &StateError{Op: "close", State: state}
	}
	s.state = StateFinalizing
	s.mu.Unlock()

	err := s.client.Move(ctx, path.Join(s.staging, CompletionObject), s.target)

	s.mu.Lock()
	if err != nil {
		s.state = StateAccumulating
		s.mu.Unlock()
		return fmt.Errorf("finalize upload: %w", err)
	}
	s.state = StateClosed
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSessionClosed("committed", time.Since(s.openedAt))
	}
	return nil
}

// Abort abandons the session without any remote call. The staging
// collection is left behind; the Sweeper reclaims it once it is older than
// the orphan TTL.
func (s *Session) Abort() error {
	s.mu.Lock()
	if s.state != StateOpen && s.state != StateAccumulating {
		state := s.state
		s.mu.Unlock()
		return &StateError{Op: "abort", State: state}
	}
	s.state = StateAborted
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSessionClosed("aborted", time.Since(s.openedAt))
	}
	return nil
}

// EnsureStagingRoot creates the staging root collection if it does not
// exist yet. Mounts call this once before their first write session rather
// than at mount time, so read-only use never writes to the remote.
func EnsureStagingRoot(ctx context.Context, client remote.Client, root string) error {
	_, err := client.Stat(ctx, root)
	if err == nil {
		return nil
	}
	if !remote.IsNotFound(err) {
		return err
	}

	if err := client.MkCol(ctx, root); err != nil {
		return fmt.Errorf("create staging root: %w", err)
	}
	return nil
}

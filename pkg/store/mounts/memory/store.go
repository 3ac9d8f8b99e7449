// Package memory provides an in-memory mount-record store for testing and
// ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Store is an in-memory implementation of mounts.Store.
//
// Records do not survive process restarts; a daemon backed by this store
// starts with no mounts every time.
type Store struct {
	mu      sync.RWMutex
	records map[mounts.MountID]*mounts.Record
	closed  bool
}

// New creates a new in-memory mount-record store.
func New() *Store {
	return &Store{
		records: make(map[mounts.MountID]*mounts.Record),
	}
}

// Save persists a record, replacing any existing record with the same ID.
func (s *Store) Save(ctx context.Context, rec *mounts.Record) error {
	if rec == nil || rec.ID == "" {
		return mounts.NewInvalidArgumentError("record must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return mounts.NewClosedError()
	}

	// Store a copy to prevent mutation through the caller's pointer
	copied := *rec
	s.records[rec.ID] = &copied

	return nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id mounts.MountID) (*mounts.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, mounts.NewClosedError()
	}

	rec, ok := s.records[id]
	if !ok {
		return nil, mounts.NewNotFoundError(id)
	}

	copied := *rec
	return &copied, nil
}

// Delete removes a record by ID.
func (s *Store) Delete(ctx context.Context, id mounts.MountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return mounts.NewClosedError()
	}

	if _, ok := s.records[id]; !ok {
		return mounts.NewNotFoundError(id)
	}

	delete(s.records, id)
	return nil
}

// List returns all records ordered by ID.
func (s *Store) List(ctx context.Context) ([]*mounts.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, mounts.NewClosedError()
	}

	records := make([]*mounts.Record, 0, len(s.records))
	for _, rec := range s.records {
		copied := *rec
		records = append(records, &copied)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil
	return nil
}

// Count returns the number of records stored (for testing).
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ensure Store implements mounts.Store.
var _ mounts.Store = (*Store)(nil)

// Package mounts provides the persisted mount-record store interface.
package mounts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// MountID uniquely identifies a mounted server/account pair.
//
// IDs are deterministic: the same URL and username always produce the same
// ID, which is what makes mounting idempotent across restarts and daemons.
type MountID string

// ComputeID derives the mount identifier for a server/account pair.
//
// The ID is the lowercase hex SHA-256 of the URL and username separated by
// a newline, truncated to 32 characters. The newline separator keeps
// ("a", "bc") and ("ab", "c") style pairs from colliding.
func ComputeID(url, username string) MountID {
	sum := sha256.Sum256([]byte(url + "\n" + username))
	return MountID(hex.EncodeToString(sum[:])[:32])
}

// String returns the ID as a plain string.
func (id MountID) String() string {
	return string(id)
}

// Record is a persisted mount configuration.
//
// Records are written when a mount succeeds, deleted on unmount, and read
// back in bulk when the daemon resumes its mounts at startup. The password
// is stored as provided; protecting the store itself is the deployment's
// concern.
type Record struct {
	// ID is the deterministic mount identifier (see ComputeID).
	ID MountID `json:"id"`

	// Name is the human-facing display name for the mount.
	Name string `json:"name"`

	// URL is the base URL of the remote document server.
	URL string `json:"url"`

	// Username authenticates against the remote server.
	Username string `json:"username"`

	// Password authenticates against the remote server.
	Password string `json:"password"`

	// Writable reports whether write operations are allowed on the mount.
	Writable bool `json:"writable"`

	// CreatedAt is when the mount was first registered.
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for mount-record persistence backends.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a record, replacing any existing record with the
	// same ID.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID.
	// Returns a NotFound error if no record exists.
	Get(ctx context.Context, id MountID) (*Record, error)

	// Delete removes a record by ID.
	// Returns a NotFound error if no record exists.
	Delete(ctx context.Context, id MountID) error

	// List returns all records ordered by ID.
	List(ctx context.Context) ([]*Record, error)

	// Close releases any resources held by the store.
	Close() error
}

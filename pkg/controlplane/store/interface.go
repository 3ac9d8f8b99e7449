// Package store provides the control plane persistence layer.
//
// This package implements the Store interface for managing control plane
// accounts used by the admin API and CLI.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL (shared deployments)
package store

import (
	"context"
	"time"

	"github.com/marmos91/davmount/pkg/controlplane/models"
)

// Store provides the control plane persistence interface.
//
// Thread Safety: Implementations must be safe for concurrent use from
// multiple goroutines.
type Store interface {
	// GetUserByUsername returns a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns a user by their unique ID (UUID).
	// Returns models.ErrUserNotFound if no user has this ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CountUsers returns the number of users.
	CountUsers(ctx context.Context) (int64, error)

	// CreateUser creates a new user.
	// The user ID will be generated if empty. Returns the generated ID.
	// Returns models.ErrDuplicateUser if a user with the same username exists.
	CreateUser(ctx context.Context, user *models.User) (string, error)

	// DeleteUser deletes a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	DeleteUser(ctx context.Context, username string) error

	// UpdateUserPassword updates a user's password hash.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error

	// UpdateLastLogin updates the user's last login timestamp.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	UpdateLastLogin(ctx context.Context, username string, timestamp time.Time) error

	// ValidateCredentials verifies username/password credentials.
	// Returns the user if credentials are valid.
	// Returns models.ErrInvalidCredentials if the credentials are invalid.
	// Returns models.ErrUserDisabled if the user account is disabled.
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)

	// Healthcheck verifies the database connection is alive.
	Healthcheck(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

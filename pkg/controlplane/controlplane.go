// Package controlplane provides the management plane for davmount.
//
// The control plane manages:
//   - Persistent accounts (users) via Store
//   - REST API for mount/session/user management via API Server
//
// The live mount table itself belongs to pkg/registry; the control plane
// holds a reference to it so API handlers can act on mounts.
//
// Usage:
//
//	cp, err := controlplane.New(&controlplane.Options{
//	    Database: &cfg.ControlPlaneDB,
//	    API:      &cfg.API,
//	    Registry: reg,
//	})
//	if err != nil {
//	    return err
//	}
//	defer cp.Close()
package controlplane

import (
	"fmt"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/controlplane/api"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/registry"
)

// ControlPlane owns the management surface of the daemon.
//
// It coordinates:
//   - Store: persistent accounts (SQLite/PostgreSQL via GORM)
//   - API Server: REST API for management (optional, needs a JWT secret)
type ControlPlane struct {
	store     *store.GORMStore
	apiServer *api.Server
}

// Options configures the ControlPlane.
type Options struct {
	// Database configuration for persistent storage
	Database *store.Config

	// API configuration. The API server is only created when a JWT secret
	// is configured; otherwise the daemon runs provider-only.
	API *api.APIConfig

	// Registry is the live mount table the API operates on.
	Registry *registry.Registry

	// Version is reported by the status endpoint.
	Version string
}

// New creates a new ControlPlane with the given options.
//
// This initializes:
//  1. Persistent store (SQLite/PostgreSQL)
//  2. API server (if a JWT secret is configured)
//
// Call Close() when done to release resources.
func New(opts *Options) (*ControlPlane, error) {
	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}
	if opts.Database == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	// Create persistent store
	cpStore, err := store.New(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	cp := &ControlPlane{store: cpStore}

	// Initialize API server if enabled
	if opts.API != nil && opts.API.IsEnabled() {
		apiServer, err := api.NewServer(*opts.API, opts.Registry, cpStore, opts.Version)
		if err != nil {
			cpStore.Close()
			return nil, fmt.Errorf("failed to create API server: %w", err)
		}
		cp.apiServer = apiServer
		logger.Info("control plane API server initialized",
			logger.KeyListen, opts.API.Listen)
	}

	return cp, nil
}

// Store returns the persistent account store.
func (cp *ControlPlane) Store() *store.GORMStore {
	return cp.store
}

// APIServer returns the API server (nil when no JWT secret is configured).
func (cp *ControlPlane) APIServer() *api.Server {
	return cp.apiServer
}

// Close releases all resources held by the ControlPlane.
func (cp *ControlPlane) Close() error {
	return cp.store.Close()
}

// Package testing provides test fixtures for provider handler behavioral
// tests.
//
// Fixtures use real components end to end — an in-memory WebDAV server, a
// real registry over a memory mount store, the real webdav client — so
// handler tests observe wire-level behavior (request counts, staged
// chunks, assembled uploads) instead of mock expectations.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/adapter/provider/handlers"
	"github.com/marmos91/davmount/pkg/registry"
	"github.com/marmos91/davmount/pkg/remote/webdav"
	"github.com/marmos91/davmount/pkg/remote/webdav/webdavtest"
	"github.com/marmos91/davmount/pkg/store/mounts/memory"
)

// DefaultMountName is the display name of the fixture's writable mount.
const DefaultMountName = "docs"

// DefaultUsername is the account the fixture mounts as.
const DefaultUsername = "alice"

// HandlerTestFixture provides a complete environment for handler tests.
//
// It sets up:
//   - An in-memory WebDAV server with chunk-assembly emulation
//   - A registry over a memory mount store and the real webdav client
//   - One writable mount against the server
//   - A Handler instance ready for testing
//
// Use NewHandlerFixture to create a fixture for each test.
type HandlerTestFixture struct {
	t *testing.T

	// Handler is the provider handler set under test.
	Handler *handlers.Handler

	// Registry manages the fixture's mounts.
	Registry *registry.Registry

	// Server is the in-memory WebDAV server; seed and inspect remote
	// state through its helpers.
	Server *webdavtest.Server

	// Mount is the fixture's writable mount.
	Mount *registry.Mount

	// MountID is Mount's identifier in wire form.
	MountID string
}

// NewHandlerFixture creates a fixture with one writable mount. Everything
// is cleaned up with the test.
func NewHandlerFixture(t *testing.T) *HandlerTestFixture {
	t.Helper()

	reg, err := registry.New(registry.Config{
		Store:         memory.New(),
		Factory:       webdav.New,
		ClientTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	t.Cleanup(reg.Close)

	srv := webdavtest.New(t)

	m, err := reg.Mount(context.Background(), registry.MountConfig{
		Name:     DefaultMountName,
		URL:      srv.URL,
		Username: DefaultUsername,
		Password: "secret",
		Writable: true,
	})
	if err != nil {
		t.Fatalf("failed to mount test server: %v", err)
	}

	return &HandlerTestFixture{
		t:        t,
		Handler:  handlers.New(reg),
		Registry: reg,
		Server:   srv,
		Mount:    m,
		MountID:  m.ID.String(),
	}
}

// Context returns a fresh request context.
func (f *HandlerTestFixture) Context() context.Context {
	return context.Background()
}

// MountReadOnly registers an additional read-only mount against the same
// server under a different account, returning its wire-form ID.
func (f *HandlerTestFixture) MountReadOnly(name string) string {
	f.t.Helper()

	m, err := f.Registry.Mount(context.Background(), registry.MountConfig{
		Name:     name,
		URL:      f.Server.URL,
		Username: "viewer",
		Password: "secret",
		Writable: false,
	})
	if err != nil {
		f.t.Fatalf("failed to mount read-only: %v", err)
	}
	return m.ID.String()
}

// WantsAll requests every projectable field. Thumbnail stays false; use
// WantsThumbnail for the refusal path.
func WantsAll() provider.FieldWants {
	return provider.FieldWants{
		Name:             true,
		IsDirectory:      true,
		Size:             true,
		ModificationTime: true,
		MIMEType:         true,
	}
}

// WantsThumbnail requests a thumbnail alongside the name field.
func WantsThumbnail() provider.FieldWants {
	return provider.FieldWants{Name: true, Thumbnail: true}
}

// OpenWrite opens a write handle through the handler, failing the test on
// error.
func (f *HandlerTestFixture) OpenWrite(requestID int64, path string) {
	f.t.Helper()

	err := f.Handler.OpenFile(f.Context(), &provider.OpenFileOptions{
		MountID:   f.MountID,
		RequestID: requestID,
		Path:      path,
		Write:     true,
	})
	if err != nil {
		f.t.Fatalf("failed to open write handle for %q: %v", path, err)
	}
}

// OpenRead opens a read handle through the handler, failing the test on
// error.
func (f *HandlerTestFixture) OpenRead(requestID int64, path string) {
	f.t.Helper()

	err := f.Handler.OpenFile(f.Context(), &provider.OpenFileOptions{
		MountID:   f.MountID,
		RequestID: requestID,
		Path:      path,
	})
	if err != nil {
		f.t.Fatalf("failed to open read handle for %q: %v", path, err)
	}
}

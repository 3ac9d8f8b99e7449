// Package remote defines the client seam between the provider runtime and a
// remote document server. The rest of the system speaks only this interface;
// the concrete WebDAV dialect lives in the webdav subpackage.
//
// All paths are absolute, slash-separated remote paths ("/reports/q1.pdf").
// Implementations translate their protocol's failures into the typed errors
// in this package so callers can classify outcomes without knowing the
// protocol.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Stat describes a single remote resource as reported by the server.
type Stat struct {
	Name        string    // base name of the resource
	IsDir       bool      // true for collections
	Size        int64     // size in bytes; 0 for collections
	ModTime     time.Time // last modification time
	ContentType string    // MIME type; may be empty, always empty for collections
}

// Metadata is the provider-facing view of a resource, translated from a Stat.
// The metadata cache stores these; the provider adapter projects them into
// wire records.
type Metadata struct {
	Name        string
	IsDirectory bool
	Size        int64
	ModTime     time.Time
	MIMEType    string
}

// Metadata translates the stat record into its provider-facing form.
// Size, ModTime and the MIME type are copied verbatim; an empty MIME type
// is valid and expected for directories.
func (s Stat) Metadata() Metadata {
	return Metadata{
		Name:        s.Name,
		IsDirectory: s.IsDir,
		Size:        s.Size,
		ModTime:     s.ModTime,
		MIMEType:    s.ContentType,
	}
}

// ClientConfig carries everything needed to build a client for one mount.
type ClientConfig struct {
	// URL is the base URL of the remote server, including any path prefix
	// ("https://dav.example.com/remote.php/webdav").
	URL string

	// Username and Password authenticate every request (Basic auth).
	// An empty Username means anonymous access.
	Username string
	Password string

	// Timeout bounds each HTTP request. Zero means no timeout; the core
	// data path deliberately carries no retry or deadline policy of its own.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Validate checks that the configuration can address a server.
func (c *ClientConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("remote URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid remote URL %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote URL %q must use http or https, got %q", c.URL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("remote URL %q has no host", c.URL)
	}
	return nil
}

// Client is the operation surface the provider runtime needs from a remote
// document server. Implementations must be safe for concurrent use; every
// failure must be a *Error from this package.
type Client interface {
	// List returns the direct children of the collection at path.
	// The collection's own entry is not included.
	List(ctx context.Context, path string) ([]Stat, error)

	// Stat describes the single resource at path.
	Stat(ctx context.Context, path string) (*Stat, error)

	// GetRange reads length bytes starting at offset. Reads past the end of
	// the resource return the available bytes (possibly none) without error.
	GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error)

	// Get reads the entire resource.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put replaces the resource at path with data, creating it if absent.
	Put(ctx context.Context, path string, data []byte) error

	// MkCol creates the collection at path. The parent must exist.
	MkCol(ctx context.Context, path string) error

	// Delete removes the resource at path; collections are removed
	// recursively.
	Delete(ctx context.Context, path string) error

	// Move renames src to dst, replacing any existing resource at dst.
	Move(ctx context.Context, src, dst string) error

	// Copy duplicates src at dst, replacing any existing resource at dst.
	Copy(ctx context.Context, src, dst string) error
}

// Factory builds a Client for one mount. The registry holds a Factory so
// tests can substitute in-memory implementations.
type Factory func(cfg ClientConfig) (Client, error)

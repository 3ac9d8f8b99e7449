// Package webdav implements remote.Client against WebDAV document servers.
//
// All protocol operations except ranged reads go through the
// studio-b12/gowebdav client library; ranged reads are issued directly (see
// range.go). Server failures are translated into pkg/remote's typed errors:
// 404 and 409 (missing resource or missing parent collection) become
// NotFound, 401 and 403 become Forbidden, transport-level failures become
// Unreachable, and everything else becomes Other.
package webdav

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	stdpath "path"
	"strings"

	"github.com/studio-b12/gowebdav"

	"github.com/marmos91/davmount/pkg/remote"
)

// Client talks to one WebDAV server on behalf of one mount.
//
// The library issues requests without a per-call context, so cancellation is
// honored between operations; in-flight requests are bounded by the
// configured HTTP timeout. Ranged reads carry the caller's context directly.
type Client struct {
	dav      *gowebdav.Client
	http     *http.Client
	endpoint string // base URL without trailing slash
	username string
	password string
}

var _ remote.Client = (*Client)(nil)

// New builds a Client for cfg. It satisfies remote.Factory.
func New(cfg remote.ClientConfig) (remote.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("webdav client config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.URL, "/")

	dav := gowebdav.NewClient(endpoint, cfg.Username, cfg.Password)
	httpClient := &http.Client{Timeout: cfg.Timeout}

	if cfg.InsecureSkipVerify {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		dav.SetTransport(transport)
		httpClient.Transport = transport
	}
	if cfg.Timeout > 0 {
		dav.SetTimeout(cfg.Timeout)
	}

	return &Client{
		dav:      dav,
		http:     httpClient,
		endpoint: endpoint,
		username: cfg.Username,
		password: cfg.Password,
	}, nil
}

// List returns the direct children of the collection at path.
func (c *Client) List(ctx context.Context, path string) ([]remote.Stat, error) {
	if err := ctx.Err(); err != nil {
		return nil, remote.NewOtherError(path, "operation canceled", err)
	}

	infos, err := c.dav.ReadDir(path)
	if err != nil {
		return nil, classify("PROPFIND", path, err)
	}

	stats := make([]remote.Stat, 0, len(infos))
	for _, fi := range infos {
		stats = append(stats, statFromFileInfo(fi, fi.Name()))
	}
	return stats, nil
}

// Stat describes the single resource at path.
func (c *Client) Stat(ctx context.Context, path string) (*remote.Stat, error) {
	if err := ctx.Err(); err != nil {
		return nil, remote.NewOtherError(path, "operation canceled", err)
	}

	fi, err := c.dav.Stat(path)
	if err != nil {
		return nil, classify("PROPFIND", path, err)
	}

	// Some servers omit displayname; fall back to the path base.
	name := fi.Name()
	if name == "" {
		name = stdpath.Base(path)
	}
	s := statFromFileInfo(fi, name)
	return &s, nil
}

// Get reads the entire resource at path.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, remote.NewOtherError(path, "operation canceled", err)
	}

	data, err := c.dav.Read(path)
	if err != nil {
		return nil, classify("GET", path, err)
	}
	return data, nil
}

// Put replaces the resource at path with data, creating it if absent.
func (c *Client) Put(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return remote.NewOtherError(path, "operation canceled", err)
	}

	if err := c.dav.Write(path, data, 0644); err != nil {
		return classify("PUT", path, err)
	}
	return nil
}

// MkCol creates the collection at path.
func (c *Client) MkCol(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return remote.NewOtherError(path, "operation canceled", err)
	}

	if err := c.dav.Mkdir(path, 0755); err != nil {
		return classify("MKCOL", path, err)
	}
	return nil
}

// Delete removes the resource at path. Collections are removed recursively.
// The protocol's DELETE is idempotent: a missing target is not an error.
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return remote.NewOtherError(path, "operation canceled", err)
	}

	if err := c.dav.RemoveAll(path); err != nil {
		return classify("DELETE", path, err)
	}
	return nil
}

// Move renames src to dst, replacing any existing resource at dst.
func (c *Client) Move(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return remote.NewOtherError(src, "operation canceled", err)
	}

	if err := c.dav.Rename(src, dst, true); err != nil {
		return classify("MOVE", src, err)
	}
	return nil
}

// Copy duplicates src at dst, replacing any existing resource at dst.
func (c *Client) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return remote.NewOtherError(src, "operation canceled", err)
	}

	if err := c.dav.Copy(src, dst, true); err != nil {
		return classify("COPY", src, err)
	}
	return nil
}

// statFromFileInfo translates a PROPFIND result into a Stat. Collections
// never carry a content type even when the server reports one
// ("httpd/unix-directory" and friends).
func statFromFileInfo(fi os.FileInfo, name string) remote.Stat {
	s := remote.Stat{
		Name:    name,
		IsDir:   fi.IsDir(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
	if ct, ok := fi.(interface{ ContentType() string }); ok && !fi.IsDir() {
		s.ContentType = ct.ContentType()
	}
	return s
}

// classify translates a client-library failure into a typed remote error.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var se gowebdav.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusNotFound, http.StatusConflict:
			return remote.NewNotFoundError(path)
		case http.StatusUnauthorized, http.StatusForbidden:
			return remote.NewForbiddenError(path)
		default:
			return remote.NewOtherError(path, fmt.Sprintf("%s returned status %d", op, se.Status), err)
		}
	}

	// No HTTP status means the request never completed: DNS, dial, TLS, or
	// timeout failures all land here.
	var ue *url.Error
	if errors.As(err, &ue) {
		return remote.NewUnreachableError(path, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return remote.NewUnreachableError(path, err)
	}

	return remote.NewOtherError(path, op+" failed", err)
}

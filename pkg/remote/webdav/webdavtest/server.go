// Package webdavtest runs an in-memory WebDAV server for tests.
//
// The server wraps golang.org/x/net/webdav with one addition: it emulates
// the chunked-upload convention of the target document servers. A MOVE whose
// source base name is the completion object assembles the staging
// collection's chunk objects into the MOVE destination and removes the
// staging collection, exactly as those servers do when an upload finishes.
// This keeps client, upload-session, and handler tests honest end to end.
package webdavtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/webdav"
)

// CompletionName is the completion object whose MOVE triggers assembly.
const CompletionName = ".file"

// Server is an httptest.Server backed by an in-memory WebDAV filesystem.
// Tests can seed and inspect the filesystem directly through FS and the
// Must* helpers, bypassing HTTP. Every HTTP request is counted so tests can
// assert that an operation was (or was not) served from cache.
type Server struct {
	*httptest.Server
	FS webdav.FileSystem

	username string
	password string

	mu            sync.Mutex
	requestCount  int
	rangeRequests []string
}

// New starts a server with no authentication. It is shut down with the test.
func New(t *testing.T) *Server {
	t.Helper()
	return newServer(t, "", "")
}

// NewWithAuth starts a server requiring HTTP Basic credentials; requests
// with missing or wrong credentials receive 401.
func NewWithAuth(t *testing.T, username, password string) *Server {
	t.Helper()
	return newServer(t, username, password)
}

func newServer(t *testing.T, username, password string) *Server {
	t.Helper()

	fs := webdav.NewMemFS()
	dav := &webdav.Handler{
		FileSystem: fs,
		LockSystem: webdav.NewMemLS(),
	}

	s := &Server{FS: fs, username: username, password: password}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestCount++
		if rng := r.Header.Get("Range"); rng != "" {
			s.rangeRequests = append(s.rangeRequests, rng)
		}
		s.mu.Unlock()

		if s.username != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.username || pass != s.password {
				w.Header().Set("WWW-Authenticate", `Basic realm="webdavtest"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		if r.Method == "MOVE" && path.Base(r.URL.Path) == CompletionName {
			s.assemble(w, r)
			return
		}
		dav.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// RequestCount returns the number of HTTP requests the server has seen.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// RangeRequests returns the Range headers of all requests seen so far, in
// arrival order.
func (s *Server) RangeRequests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rangeRequests...)
}

// ============================================================================
// Chunk Assembly
// ============================================================================

// assemble concatenates the staging collection's chunk objects into the MOVE
// destination and removes the staging collection.
func (s *Server) assemble(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dst, err := destinationPath(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stagingDir := path.Dir(r.URL.Path)

	names, err := s.chunkNames(ctx, stagingDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	assembled, err := s.placeChunks(ctx, stagingDir, names)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.writeAll(ctx, dst, assembled); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.FS.RemoveAll(ctx, stagingDir); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func destinationPath(r *http.Request) (string, error) {
	dest := r.Header.Get("Destination")
	if dest == "" {
		return "", fmt.Errorf("missing Destination header")
	}
	u, err := url.Parse(dest)
	if err != nil {
		return "", fmt.Errorf("invalid Destination header %q: %w", dest, err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("Destination header %q has no path", dest)
	}
	return u.Path, nil
}

// chunkNames returns the staging collection's chunk object names in
// lexicographic order, skipping the completion object.
func (s *Server) chunkNames(ctx context.Context, dir string) ([]string, error) {
	f, err := s.FS.OpenFile(ctx, dir, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == CompletionName || fi.IsDir() {
			continue
		}
		names = append(names, fi.Name())
	}
	sort.Strings(names)
	return names, nil
}

// placeChunks writes each chunk at the offset encoded in its name. Names are
// "<start>-<end>" with zero-padded decimal bounds, so lexicographic order is
// offset order; later chunks win where ranges overlap.
func (s *Server) placeChunks(ctx context.Context, dir string, names []string) ([]byte, error) {
	var out []byte
	for _, name := range names {
		start, ok := parseChunkStart(name)
		if !ok {
			continue
		}
		data, err := s.readAll(ctx, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		end := start + int64(len(data))
		if int64(len(out)) < end {
			out = append(out, make([]byte, end-int64(len(out)))...)
		}
		copy(out[start:end], data)
	}
	return out, nil
}

func parseChunkStart(name string) (int64, bool) {
	dash := strings.IndexByte(name, '-')
	if dash <= 0 {
		return 0, false
	}
	start, err := strconv.ParseInt(name[:dash], 10, 64)
	if err != nil || start < 0 {
		return 0, false
	}
	return start, true
}

// ============================================================================
// Direct Filesystem Access for Tests
// ============================================================================

// MustMkdir creates a collection directly in the backing filesystem.
func (s *Server) MustMkdir(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, s.FS.Mkdir(context.Background(), dir, 0755),
		"creating test collection %s", dir)
}

// MustWriteFile writes a document directly into the backing filesystem.
func (s *Server) MustWriteFile(t *testing.T, p string, data []byte) {
	t.Helper()
	require.NoError(t, s.writeAll(context.Background(), p, data),
		"seeding test document %s", p)
}

// ReadFile reads a document directly from the backing filesystem.
func (s *Server) ReadFile(t *testing.T, p string) []byte {
	t.Helper()
	data, err := s.readAll(context.Background(), p)
	require.NoError(t, err, "reading test document %s", p)
	return data
}

// Exists reports whether a resource exists in the backing filesystem.
func (s *Server) Exists(p string) bool {
	_, err := s.FS.Stat(context.Background(), p)
	return err == nil
}

// ListNames returns the sorted child names of a collection.
func (s *Server) ListNames(t *testing.T, dir string) []string {
	t.Helper()
	f, err := s.FS.OpenFile(context.Background(), dir, os.O_RDONLY, 0)
	require.NoError(t, err, "opening test collection %s", dir)
	defer f.Close()

	infos, err := f.Readdir(-1)
	require.NoError(t, err, "listing test collection %s", dir)

	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	sort.Strings(names)
	return names
}

func (s *Server) readAll(ctx context.Context, p string) ([]byte, error) {
	f, err := s.FS.OpenFile(ctx, p, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) writeAll(ctx context.Context, p string, data []byte) error {
	f, err := s.FS.OpenFile(ctx, p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package webdav_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/pkg/remote"
	"github.com/marmos91/davmount/pkg/remote/webdav"
	"github.com/marmos91/davmount/pkg/remote/webdav/webdavtest"
)

// newClient builds a client against srv with the given credentials.
func newClient(t *testing.T, srv *webdavtest.Server, username, password string) remote.Client {
	t.Helper()

	c, err := webdav.New(remote.ClientConfig{
		URL:      srv.URL,
		Username: username,
		Password: password,
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err, "building webdav client")
	return c
}

// TestNew_RejectsInvalidConfig verifies the constructor validates the
// configuration before building anything.
func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := webdav.New(remote.ClientConfig{URL: "ftp://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http or https")
}

// TestClient_List verifies directory listings translate into Stat records
// and that the listed collection itself is excluded.
func TestClient_List(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, "/reports")
	srv.MustMkdir(t, "/reports/archive")
	srv.MustWriteFile(t, "/reports/q1.pdf", []byte("%PDF-1.4 q1 contents"))
	srv.MustWriteFile(t, "/reports/notes.txt", []byte("plain notes"))

	client := newClient(t, srv, "", "")

	entries, err := client.List(context.Background(), "/reports")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := make(map[string]remote.Stat, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	require.Contains(t, byName, "q1.pdf")
	assert.False(t, byName["q1.pdf"].IsDir)
	assert.Equal(t, int64(len("%PDF-1.4 q1 contents")), byName["q1.pdf"].Size)
	assert.Equal(t, "application/pdf", byName["q1.pdf"].ContentType)

	require.Contains(t, byName, "archive")
	assert.True(t, byName["archive"].IsDir)
	assert.Empty(t, byName["archive"].ContentType, "collections carry no MIME type")

	require.Contains(t, byName, "notes.txt")
}

// TestClient_List_MissingCollection verifies a listing of an absent path is
// classified as NotFound.
func TestClient_List_MissingCollection(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv, "", "")

	_, err := client.List(context.Background(), "/no-such-dir")
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err), "expected NotFound, got %v", err)
}

// TestClient_Stat verifies single-resource stats for files, collections,
// and missing paths.
func TestClient_Stat(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, "/docs")
	srv.MustWriteFile(t, "/docs/a.txt", []byte("hello stat"))

	client := newClient(t, srv, "", "")

	t.Run("file", func(t *testing.T) {
		s, err := client.Stat(context.Background(), "/docs/a.txt")
		require.NoError(t, err)

		assert.Equal(t, "a.txt", s.Name)
		assert.False(t, s.IsDir)
		assert.Equal(t, int64(10), s.Size)
		assert.WithinDuration(t, time.Now(), s.ModTime, time.Minute)
	})

	t.Run("collection", func(t *testing.T) {
		s, err := client.Stat(context.Background(), "/docs")
		require.NoError(t, err)

		assert.True(t, s.IsDir)
		assert.Empty(t, s.ContentType)
	})

	t.Run("missing path is NotFound", func(t *testing.T) {
		_, err := client.Stat(context.Background(), "/docs/missing.txt")
		require.Error(t, err)
		assert.True(t, remote.IsNotFound(err))
	})
}

// TestClient_PutGet verifies document round trips, overwrites, and paths
// that need escaping.
func TestClient_PutGet(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, "/docs")
	client := newClient(t, srv, "", "")
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, "/docs/new.txt", []byte("first version")))
		assert.Equal(t, []byte("first version"), srv.ReadFile(t, "/docs/new.txt"))

		data, err := client.Get(ctx, "/docs/new.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("first version"), data)
	})

	t.Run("put replaces existing content", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, "/docs/new.txt", []byte("v2")))
		assert.Equal(t, []byte("v2"), srv.ReadFile(t, "/docs/new.txt"))
	})

	t.Run("empty document", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, "/docs/empty.bin", nil))

		data, err := client.Get(ctx, "/docs/empty.bin")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("path with spaces", func(t *testing.T) {
		require.NoError(t, client.Put(ctx, "/docs/my report 1.txt", []byte("spaced")))

		data, err := client.Get(ctx, "/docs/my report 1.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("spaced"), data)
	})

	t.Run("get of missing path is NotFound", func(t *testing.T) {
		_, err := client.Get(ctx, "/docs/absent.txt")
		require.Error(t, err)
		assert.True(t, remote.IsNotFound(err))
	})
}

// TestClient_MkCol verifies collection creation and its failure modes.
func TestClient_MkCol(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv, "", "")
	ctx := context.Background()

	require.NoError(t, client.MkCol(ctx, "/new-folder"))
	assert.True(t, srv.Exists("/new-folder"))

	t.Run("missing parent is NotFound", func(t *testing.T) {
		err := client.MkCol(ctx, "/nowhere/child")
		require.Error(t, err)
		assert.True(t, remote.IsNotFound(err), "MKCOL into a missing parent, got %v", err)
	})
}

// TestClient_Delete verifies removal of files and whole collections.
// The protocol's DELETE is idempotent, so a missing target is not an error.
func TestClient_Delete(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, "/trash")
	srv.MustWriteFile(t, "/trash/a.txt", []byte("a"))
	srv.MustWriteFile(t, "/trash/b.txt", []byte("b"))

	client := newClient(t, srv, "", "")
	ctx := context.Background()

	require.NoError(t, client.Delete(ctx, "/trash/a.txt"))
	assert.False(t, srv.Exists("/trash/a.txt"))

	require.NoError(t, client.Delete(ctx, "/trash"))
	assert.False(t, srv.Exists("/trash"))
	assert.False(t, srv.Exists("/trash/b.txt"), "collection delete is recursive")

	assert.NoError(t, client.Delete(ctx, "/never-existed"))
}

// TestClient_Move verifies renames replace the destination and fail on a
// missing source.
func TestClient_Move(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, "/docs")
	srv.MustWriteFile(t, "/docs/old.txt", []byte("moving content"))
	srv.MustWriteFile(t, "/docs/target.txt", []byte("to be replaced"))

	client := newClient(t, srv, "", "")
	ctx := context.Background()

	require.NoError(t, client.Move(ctx, "/docs/old.txt", "/docs/new.txt"))
	assert.False(t, srv.Exists("/docs/old.txt"))
	assert.Equal(t, []byte("moving content"), srv.ReadFile(t, "/docs/new.txt"))

	require.NoError(t, client.Move(ctx, "/docs/new.txt", "/docs/target.txt"))
	assert.Equal(t, []byte("moving content"), srv.ReadFile(t, "/docs/target.txt"))

	t.Run("missing source is NotFound", func(t *testing.T) {
		err := client.Move(ctx, "/docs/ghost.txt", "/docs/anywhere.txt")
		require.Error(t, err)
		assert.True(t, remote.IsNotFound(err))
	})
}

// TestClient_Copy verifies duplication leaves the source in place.
func TestClient_Copy(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, "/docs")
	srv.MustWriteFile(t, "/docs/src.txt", []byte("copy me"))

	client := newClient(t, srv, "", "")

	require.NoError(t, client.Copy(context.Background(), "/docs/src.txt", "/docs/dup.txt"))
	assert.Equal(t, []byte("copy me"), srv.ReadFile(t, "/docs/src.txt"))
	assert.Equal(t, []byte("copy me"), srv.ReadFile(t, "/docs/dup.txt"))
}

// TestClient_Authentication verifies credential handling: correct Basic
// credentials succeed, wrong ones classify as Forbidden.
func TestClient_Authentication(t *testing.T) {
	t.Parallel()

	srv := webdavtest.NewWithAuth(t, "alice", "correct-horse")
	srv.MustWriteFile(t, "/secret.txt", []byte("classified"))

	t.Run("valid credentials", func(t *testing.T) {
		client := newClient(t, srv, "alice", "correct-horse")

		data, err := client.Get(context.Background(), "/secret.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("classified"), data)
	})

	t.Run("wrong password is Forbidden", func(t *testing.T) {
		client := newClient(t, srv, "alice", "wrong")

		_, err := client.List(context.Background(), "/")
		require.Error(t, err)
		assert.True(t, remote.IsForbidden(err), "expected Forbidden, got %v", err)
	})
}

// TestClient_Unreachable verifies transport failures classify as
// Unreachable rather than generic errors.
func TestClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv, "", "")
	srv.Close()

	_, err := client.List(context.Background(), "/")
	require.Error(t, err)
	assert.True(t, remote.IsUnreachable(err), "expected Unreachable, got %v", err)
}

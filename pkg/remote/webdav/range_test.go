package webdav_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/pkg/remote"
	"github.com/marmos91/davmount/pkg/remote/webdav/webdavtest"
)

// pattern returns n deterministic, position-dependent bytes so slices can be
// compared against exact windows.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

// TestGetRange_Window verifies a ranged read returns exactly the requested
// window through a single range request.
func TestGetRange_Window(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	doc := pattern(300)
	srv.MustWriteFile(t, "/big.bin", doc)
	client := newClient(t, srv, "", "")

	data, err := client.GetRange(context.Background(), "/big.bin", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, doc[:50], data)

	ranges := srv.RangeRequests()
	require.Len(t, ranges, 1, "exactly one range request")
	assert.Equal(t, "bytes=0-49", ranges[0])
}

// TestGetRange_MiddleWindow verifies reads that start mid-resource.
func TestGetRange_MiddleWindow(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	doc := pattern(300)
	srv.MustWriteFile(t, "/big.bin", doc)
	client := newClient(t, srv, "", "")

	data, err := client.GetRange(context.Background(), "/big.bin", 100, 100)
	require.NoError(t, err)
	assert.Equal(t, doc[100:200], data)

	ranges := srv.RangeRequests()
	require.Len(t, ranges, 1)
	assert.Equal(t, "bytes=100-199", ranges[0])
}

// TestGetRange_ShortRead verifies a window extending past end of file
// returns the available bytes without error.
func TestGetRange_ShortRead(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	doc := pattern(300)
	srv.MustWriteFile(t, "/big.bin", doc)
	client := newClient(t, srv, "", "")

	data, err := client.GetRange(context.Background(), "/big.bin", 250, 100)
	require.NoError(t, err)
	assert.Equal(t, doc[250:300], data, "only the remaining 50 bytes")
}

// TestGetRange_PastEnd verifies reads at or beyond end of file yield an
// empty slice and no error.
func TestGetRange_PastEnd(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustWriteFile(t, "/big.bin", pattern(300))
	client := newClient(t, srv, "", "")

	for _, offset := range []int64{300, 301, 100000} {
		t.Run(fmt.Sprintf("offset_%d", offset), func(t *testing.T) {
			data, err := client.GetRange(context.Background(), "/big.bin", offset, 10)
			require.NoError(t, err)
			assert.Empty(t, data)
		})
	}
}

// TestGetRange_ZeroLength verifies a zero-length read never touches the
// network.
func TestGetRange_ZeroLength(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustWriteFile(t, "/big.bin", pattern(300))
	client := newClient(t, srv, "", "")
	before := srv.RequestCount()

	data, err := client.GetRange(context.Background(), "/big.bin", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, before, srv.RequestCount(), "no request issued")
}

// TestGetRange_NegativeArguments verifies invalid windows are rejected
// locally.
func TestGetRange_NegativeArguments(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv, "", "")

	_, err := client.GetRange(context.Background(), "/big.bin", -1, 10)
	require.Error(t, err)

	_, err = client.GetRange(context.Background(), "/big.bin", 0, -5)
	require.Error(t, err)
}

// TestGetRange_MissingResource verifies the NotFound classification.
func TestGetRange_MissingResource(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv, "", "")

	_, err := client.GetRange(context.Background(), "/absent.bin", 0, 10)
	require.Error(t, err)
	assert.True(t, remote.IsNotFound(err))
}

// TestGetRange_Authentication verifies the raw range request carries Basic
// credentials like every library-issued request.
func TestGetRange_Authentication(t *testing.T) {
	t.Parallel()

	srv := webdavtest.NewWithAuth(t, "alice", "pw")
	srv.MustWriteFile(t, "/doc.bin", pattern(100))

	t.Run("valid credentials", func(t *testing.T) {
		client := newClient(t, srv, "alice", "pw")

		data, err := client.GetRange(context.Background(), "/doc.bin", 10, 20)
		require.NoError(t, err)
		assert.Equal(t, pattern(100)[10:30], data)
	})

	t.Run("wrong credentials are Forbidden", func(t *testing.T) {
		client := newClient(t, srv, "alice", "nope")

		_, err := client.GetRange(context.Background(), "/doc.bin", 0, 10)
		require.Error(t, err)
		assert.True(t, remote.IsForbidden(err))
	})
}

// TestGetRange_Unreachable verifies transport failures classify as
// Unreachable.
func TestGetRange_Unreachable(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv, "", "")
	srv.Close()

	_, err := client.GetRange(context.Background(), "/doc.bin", 0, 10)
	require.Error(t, err)
	assert.True(t, remote.IsUnreachable(err))
}

// TestGetRange_PathEscaping verifies ranged reads work on paths that need
// URL escaping.
func TestGetRange_PathEscaping(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, "/my docs")
	srv.MustWriteFile(t, "/my docs/report 1.bin", pattern(64))
	client := newClient(t, srv, "", "")

	data, err := client.GetRange(context.Background(), "/my docs/report 1.bin", 16, 16)
	require.NoError(t, err)
	assert.Equal(t, pattern(64)[16:32], data)
}

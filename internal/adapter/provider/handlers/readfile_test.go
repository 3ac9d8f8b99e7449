package handlers_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/internal/adapter/provider"
	handlertesting "github.com/marmos91/davmount/internal/adapter/provider/handlers/testing"
)

// TestReadFile_RangedRead verifies a read issues one range request and
// returns exactly the requested bytes.
func TestReadFile_RangedRead(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)

	content := bytes.Repeat([]byte("0123456789"), 30) // 300 bytes
	fx.Server.MustWriteFile(t, "/data.bin", content)
	fx.OpenRead(1, "/data.bin")

	res, err := fx.Handler.ReadFile(fx.Context(), &provider.ReadFileOptions{
		MountID:   fx.MountID,
		RequestID: 1,
		Offset:    0,
		Length:    50,
	})
	require.NoError(t, err)

	assert.Equal(t, content[:50], res.Data)
	assert.False(t, res.HasMore, "reads are single responses, never streams")
	assert.Contains(t, fx.Server.RangeRequests(), "bytes=0-49",
		"the read must go out as one range request")
}

// TestReadFile_MidFileOffset verifies offsets address the right bytes.
func TestReadFile_MidFileOffset(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)

	content := []byte("abcdefghijklmnopqrstuvwxyz")
	fx.Server.MustWriteFile(t, "/alpha.txt", content)
	fx.OpenRead(2, "/alpha.txt")

	res, err := fx.Handler.ReadFile(fx.Context(), &provider.ReadFileOptions{
		MountID:   fx.MountID,
		RequestID: 2,
		Offset:    10,
		Length:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("klmno"), res.Data)
}

// TestReadFile_BeyondEOF verifies short and empty reads past the end of
// the resource return without error.
func TestReadFile_BeyondEOF(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)

	fx.Server.MustWriteFile(t, "/short.bin", make([]byte, 300))
	fx.OpenRead(3, "/short.bin")

	t.Run("range straddling the end returns the available bytes", func(t *testing.T) {
		res, err := fx.Handler.ReadFile(fx.Context(), &provider.ReadFileOptions{
			MountID: fx.MountID, RequestID: 3, Offset: 250, Length: 100,
		})
		require.NoError(t, err)
		assert.Len(t, res.Data, 50)
	})

	t.Run("range entirely past the end returns nothing", func(t *testing.T) {
		res, err := fx.Handler.ReadFile(fx.Context(), &provider.ReadFileOptions{
			MountID: fx.MountID, RequestID: 3, Offset: 400, Length: 10,
		})
		require.NoError(t, err)
		assert.Empty(t, res.Data)
	})
}

// TestReadFile_UnknownHandle verifies reads against unregistered request
// IDs fail with the unknown-handle error.
func TestReadFile_UnknownHandle(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)

	_, err := fx.Handler.ReadFile(fx.Context(), &provider.ReadFileOptions{
		MountID:   fx.MountID,
		RequestID: 42,
		Offset:    0,
		Length:    10,
	})
	assert.ErrorIs(t, err, provider.ErrUnknownHandle)
}

// TestReadFile_InvalidRange verifies negative offsets and lengths are
// rejected before any remote call.
func TestReadFile_InvalidRange(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)
	fx.Server.MustWriteFile(t, "/f.bin", make([]byte, 10))
	fx.OpenRead(4, "/f.bin")

	before := fx.Server.RequestCount()

	_, err := fx.Handler.ReadFile(fx.Context(), &provider.ReadFileOptions{
		MountID: fx.MountID, RequestID: 4, Offset: -1, Length: 10,
	})
	require.Error(t, err)

	_, err = fx.Handler.ReadFile(fx.Context(), &provider.ReadFileOptions{
		MountID: fx.MountID, RequestID: 4, Offset: 0, Length: -5,
	})
	require.Error(t, err)

	assert.Equal(t, before, fx.Server.RequestCount(), "invalid ranges must not reach the remote")
}

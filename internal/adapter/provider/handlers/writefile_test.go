package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/internal/adapter/provider"
	handlertesting "github.com/marmos91/davmount/internal/adapter/provider/handlers/testing"
	"github.com/marmos91/davmount/pkg/upload"
)

// TestWriteFile_StagesChunk verifies a write stages one range-named chunk
// and reports the bytes written.
func TestWriteFile_StagesChunk(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)
	fx.OpenWrite(1, "/out.bin")

	res, err := fx.Handler.WriteFile(fx.Context(), &provider.WriteFileOptions{
		MountID:   fx.MountID,
		RequestID: 1,
		Offset:    100,
		Data:      []byte("chunk payload"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, len("chunk payload"), res.BytesWritten)

	h, _ := fx.Mount.GetHandle(1)
	staged := fx.Server.ListNames(t, h.Session.StagingDir())
	assert.Equal(t, []string{upload.ChunkName(100, 100+int64(len("chunk payload")))}, staged)
}

// TestWriteFile_EvictsTargetFromCache verifies every staged chunk evicts
// the target's cache entry, so the next metadata read goes remote.
func TestWriteFile_EvictsTargetFromCache(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)
	fx.Server.MustMkdir(t, "/d")
	fx.Server.MustWriteFile(t, "/d/f.txt", []byte("original"))

	_, err := fx.Handler.ReadDirectory(fx.Context(), &provider.ReadDirectoryOptions{
		MountID: fx.MountID, Path: "/d", Wants: handlertesting.WantsAll(),
	})
	require.NoError(t, err)
	_, err = fx.Handler.GetMetadata(fx.Context(), &provider.GetMetadataOptions{
		MountID: fx.MountID, Path: "/d/f.txt", Wants: handlertesting.WantsAll(),
	})
	require.NoError(t, err)
	require.True(t, fx.Mount.Cache.Get("/d/f.txt").EntryPresent)

	fx.OpenWrite(2, "/d/f.txt")
	_, err = fx.Handler.WriteFile(fx.Context(), &provider.WriteFileOptions{
		MountID: fx.MountID, RequestID: 2, Offset: 0, Data: []byte("x"),
	})
	require.NoError(t, err)

	cached := fx.Mount.Cache.Get("/d/f.txt")
	assert.False(t, cached.EntryPresent, "in-flight upload invalidates the entry")
	assert.False(t, cached.ListingPresent, "in-flight upload invalidates the parent listing")
}

// TestWriteFile_OutOfOrderRoundTrip verifies chunks written out of order
// assemble into offset-ordered content on close.
func TestWriteFile_OutOfOrderRoundTrip(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)
	fx.OpenWrite(3, "/assembled.bin")

	head := make([]byte, 100)
	mid := make([]byte, 150)
	tail := make([]byte, 50)
	for i := range head {
		head[i] = 'h'
	}
	for i := range mid {
		mid[i] = 'm'
	}
	for i := range tail {
		tail[i] = 't'
	}

	// Issue tail, head, middle.
	for _, w := range []struct {
		offset int64
		data   []byte
	}{
		{250, tail},
		{0, head},
		{100, mid},
	} {
		_, err := fx.Handler.WriteFile(fx.Context(), &provider.WriteFileOptions{
			MountID: fx.MountID, RequestID: 3, Offset: w.offset, Data: w.data,
		})
		require.NoError(t, err)
	}

	require.NoError(t, fx.Handler.CloseFile(fx.Context(), &provider.CloseFileOptions{
		MountID: fx.MountID, RequestID: 3,
	}))

	var want []byte
	want = append(want, head...)
	want = append(want, mid...)
	want = append(want, tail...)
	assert.Equal(t, want, fx.Server.ReadFile(t, "/assembled.bin"))
}

// TestWriteFile_ReadHandleRefused verifies writes against a read handle
// fail without staging anything.
func TestWriteFile_ReadHandleRefused(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)
	fx.Server.MustWriteFile(t, "/r.txt", []byte("x"))
	fx.OpenRead(4, "/r.txt")

	before := fx.Server.RequestCount()
	_, err := fx.Handler.WriteFile(fx.Context(), &provider.WriteFileOptions{
		MountID: fx.MountID, RequestID: 4, Offset: 0, Data: []byte("nope"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read handle")
	assert.Equal(t, before, fx.Server.RequestCount())
}

// TestWriteFile_UnknownHandle verifies writes against unregistered request
// IDs fail with the unknown-handle error.
func TestWriteFile_UnknownHandle(t *testing.T) {
	fx := handlertesting.NewHandlerFixture(t)

	_, err := fx.Handler.WriteFile(fx.Context(), &provider.WriteFileOptions{
		MountID: fx.MountID, RequestID: 123, Offset: 0, Data: []byte("x"),
	})
	assert.ErrorIs(t, err, provider.ErrUnknownHandle)
}

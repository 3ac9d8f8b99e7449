package upload_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/pkg/remote"
	"github.com/marmos91/davmount/pkg/remote/webdav"
	"github.com/marmos91/davmount/pkg/remote/webdav/webdavtest"
	"github.com/marmos91/davmount/pkg/upload"
)

const stagingRoot = "/.davmount-uploads"

// newClient builds a client against srv.
func newClient(t *testing.T, srv *webdavtest.Server) remote.Client {
	t.Helper()

	c, err := webdav.New(remote.ClientConfig{
		URL:     srv.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err, "building webdav client")
	return c
}

// newStagedServer starts a server with the staging root already present.
func newStagedServer(t *testing.T) (*webdavtest.Server, remote.Client) {
	t.Helper()

	srv := webdavtest.New(t)
	srv.MustMkdir(t, stagingRoot)
	return srv, newClient(t, srv)
}

// recordingMetrics captures metric calls for assertions.
type recordingMetrics struct {
	mu     sync.Mutex
	opened int
	closed []string
	chunks int
	bytes  int
	sweeps []int
}

func (m *recordingMetrics) RecordSessionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
}

func (m *recordingMetrics) RecordSessionClosed(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, outcome)
}

func (m *recordingMetrics) RecordChunk(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks++
	m.bytes += bytes
}

func (m *recordingMetrics) RecordActiveSessions(int) {}

func (m *recordingMetrics) RecordSweep(swept int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps = append(m.sweeps, swept)
}

// TestOpen_CreatesStagingCollection verifies opening a session creates a
// staging collection named after the session ID, under the staging root
// rather than next to the target.
func TestOpen_CreatesStagingCollection(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)

	s, err := upload.Open(context.Background(), client, "/docs/report.pdf", stagingRoot, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "/docs/report.pdf", s.TargetPath())
	assert.Equal(t, stagingRoot+"/"+s.ID(), s.StagingDir())
	assert.Equal(t, upload.StateOpen, s.State())
	assert.True(t, srv.Exists(s.StagingDir()), "staging collection should exist remotely")
}

// TestOpen_DistinctSessions verifies two sessions for the same target get
// distinct IDs and staging collections, including when opened concurrently.
func TestOpen_DistinctSessions(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)
	ctx := context.Background()

	t.Run("sequential opens do not collide", func(t *testing.T) {
		a, err := upload.Open(ctx, client, "/docs/same.bin", stagingRoot, nil)
		require.NoError(t, err)
		b, err := upload.Open(ctx, client, "/docs/same.bin", stagingRoot, nil)
		require.NoError(t, err)

		assert.NotEqual(t, a.ID(), b.ID())
		assert.NotEqual(t, a.StagingDir(), b.StagingDir())
	})

	t.Run("concurrent opens do not collide", func(t *testing.T) {
		const n = 8

		var wg sync.WaitGroup
		ids := make([]string, n)
		errs := make([]error, n)

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s, err := upload.Open(ctx, client, "/docs/same.bin", stagingRoot, nil)
				errs[i] = err
				if err == nil {
					ids[i] = s.ID()
				}
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			require.NoError(t, errs[i], "open %d", i)
			assert.False(t, seen[ids[i]], "duplicate session ID %s", ids[i])
			seen[ids[i]] = true
			assert.True(t, srv.Exists(stagingRoot+"/"+ids[i]))
		}
	})
}

// TestOpen_FailsWithoutStagingRoot verifies a failed staging MkCol yields
// an error and no session.
func TestOpen_FailsWithoutStagingRoot(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv)

	s, err := upload.Open(context.Background(), client, "/docs/report.pdf", stagingRoot, nil)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "create staging collection")
}

// TestWrite_StagesChunksByRange verifies each write lands as a chunk object
// whose name encodes its byte range, and that name order equals offset
// order regardless of arrival order.
func TestWrite_StagesChunksByRange(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)
	ctx := context.Background()

	s, err := upload.Open(ctx, client, "/docs/data.bin", stagingRoot, nil)
	require.NoError(t, err)

	// Arrive out of order: middle, head, tail.
	require.NoError(t, s.Write(ctx, 100, make([]byte, 150)))
	require.NoError(t, s.Write(ctx, 0, make([]byte, 100)))
	require.NoError(t, s.Write(ctx, 250, make([]byte, 50)))

	assert.Equal(t, upload.StateAccumulating, s.State())

	want := []string{
		upload.ChunkName(0, 100),
		upload.ChunkName(100, 250),
		upload.ChunkName(250, 300),
	}
	assert.Equal(t, want, srv.ListNames(t, s.StagingDir()),
		"chunk names must sort into offset order")

	chunks := s.Chunks()
	require.Len(t, chunks, 3)
}

// TestClose_AssemblesTarget verifies closing a session commits the chunks
// to the target path in offset order and removes the staging collection.
func TestClose_AssemblesTarget(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)
	ctx := context.Background()

	s, err := upload.Open(ctx, client, "/docs/assembled.txt", stagingRoot, nil)
	require.NoError(t, err)

	head := bytes.Repeat([]byte("h"), 100)
	mid := []byte("the middle section")
	tail := []byte("-the end")

	// Write tail and middle before head.
	require.NoError(t, s.Write(ctx, int64(len(head)+len(mid)), tail))
	require.NoError(t, s.Write(ctx, int64(len(head)), mid))
	require.NoError(t, s.Write(ctx, 0, head))

	staging := s.StagingDir()
	require.NoError(t, s.Close(ctx))

	assert.Equal(t, upload.StateClosed, s.State())

	var want []byte
	want = append(want, head...)
	want = append(want, mid...)
	want = append(want, tail...)
	assert.Equal(t, want, srv.ReadFile(t, "/docs/assembled.txt"))
	assert.False(t, srv.Exists(staging), "staging collection should be gone after commit")
}

// TestClose_EmptySession verifies closing with no writes produces an empty
// target document.
func TestClose_EmptySession(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)
	ctx := context.Background()

	s, err := upload.Open(ctx, client, "/docs/empty.txt", stagingRoot, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	assert.Empty(t, srv.ReadFile(t, "/docs/empty.txt"))
}

// TestSession_StateErrors verifies operations outside their legal states
// fail with a StateError instead of touching the remote.
func TestSession_StateErrors(t *testing.T) {
	t.Parallel()

	_, client := newStagedServer(t)
	ctx := context.Background()

	t.Run("write after close", func(t *testing.T) {
		s, err := upload.Open(ctx, client, "/docs/a.txt", stagingRoot, nil)
		require.NoError(t, err)
		require.NoError(t, s.Close(ctx))

		err = s.Write(ctx, 0, []byte("late"))
		require.Error(t, err)
		assert.True(t, upload.IsStateError(err))
		assert.Contains(t, err.Error(), "cannot write")
	})

	t.Run("close after abort", func(t *testing.T) {
		s, err := upload.Open(ctx, client, "/docs/b.txt", stagingRoot, nil)
		require.NoError(t, err)
		require.NoError(t, s.Abort())

		err = s.Close(ctx)
		require.Error(t, err)
		assert.True(t, upload.IsStateError(err))
	})

	t.Run("abort after close", func(t *testing.T) {
		s, err := upload.Open(ctx, client, "/docs/c.txt", stagingRoot, nil)
		require.NoError(t, err)
		require.NoError(t, s.Close(ctx))

		err = s.Abort()
		require.Error(t, err)
		assert.True(t, upload.IsStateError(err))
	})

	t.Run("double abort", func(t *testing.T) {
		s, err := upload.Open(ctx, client, "/docs/d.txt", stagingRoot, nil)
		require.NoError(t, err)
		require.NoError(t, s.Abort())
		assert.True(t, upload.IsStateError(s.Abort()))
	})

	t.Run("negative offset is not a state error", func(t *testing.T) {
		s, err := upload.Open(ctx, client, "/docs/e.txt", stagingRoot, nil)
		require.NoError(t, err)

		err = s.Write(ctx, -1, []byte("x"))
		require.Error(t, err)
		assert.False(t, upload.IsStateError(err))
	})
}

// TestAbort_LeavesStagingOrphaned verifies aborting issues no remote
// deletion: the staging collection stays behind for the sweeper, and the
// target is never created.
func TestAbort_LeavesStagingOrphaned(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)
	ctx := context.Background()

	s, err := upload.Open(ctx, client, "/docs/cancelled.bin", stagingRoot, nil)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, 0, []byte("partial")))

	before := srv.RequestCount()
	require.NoError(t, s.Abort())

	assert.Equal(t, upload.StateAborted, s.State())
	assert.Equal(t, before, srv.RequestCount(), "abort must not call the remote")
	assert.True(t, srv.Exists(s.StagingDir()), "staging collection stays for the sweeper")
	assert.False(t, srv.Exists("/docs/cancelled.bin"))
}

// TestWrite_Concurrent verifies parallel writers can stage chunks of the
// same session; the assembled target depends only on byte ranges.
func TestWrite_Concurrent(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)
	ctx := context.Background()

	s, err := upload.Open(ctx, client, "/docs/parallel.bin", stagingRoot, nil)
	require.NoError(t, err)

	const chunkSize = 64
	const chunkCount = 10

	var wg sync.WaitGroup
	errs := make([]error, chunkCount)
	for i := 0; i < chunkCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := make([]byte, chunkSize)
			for j := range data {
				data[j] = byte(i)
			}
			errs[i] = s.Write(ctx, int64(i*chunkSize), data)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	require.NoError(t, s.Close(ctx))

	got := srv.ReadFile(t, "/docs/parallel.bin")
	require.Len(t, got, chunkSize*chunkCount)
	for i := 0; i < chunkCount; i++ {
		for j := 0; j < chunkSize; j++ {
			if got[i*chunkSize+j] != byte(i) {
				t.Fatalf("byte %d: got %d, want %d", i*chunkSize+j, got[i*chunkSize+j], i)
			}
		}
	}
}

// TestSession_Metrics verifies the metrics hooks fire with the right
// outcomes.
func TestSession_Metrics(t *testing.T) {
	t.Parallel()

	_, client := newStagedServer(t)
	ctx := context.Background()

	t.Run("committed", func(t *testing.T) {
		m := &recordingMetrics{}
		s, err := upload.Open(ctx, client, "/docs/metrics-a.txt", stagingRoot, m)
		require.NoError(t, err)
		require.NoError(t, s.Write(ctx, 0, []byte("hello")))
		require.NoError(t, s.Write(ctx, 5, []byte(" world")))
		require.NoError(t, s.Close(ctx))

		assert.Equal(t, 1, m.opened)
		assert.Equal(t, 2, m.chunks)
		assert.Equal(t, len("hello world"), m.bytes)
		assert.Equal(t, []string{"committed"}, m.closed)
	})

	t.Run("aborted", func(t *testing.T) {
		m := &recordingMetrics{}
		s, err := upload.Open(ctx, client, "/docs/metrics-b.txt", stagingRoot, m)
		require.NoError(t, err)
		require.NoError(t, s.Abort())

		assert.Equal(t, []string{"aborted"}, m.closed)
	})
}

// TestEnsureStagingRoot verifies the staging root is created when absent
// and left alone when present.
func TestEnsureStagingRoot(t *testing.T) {
	t.Parallel()

	srv := webdavtest.New(t)
	client := newClient(t, srv)
	ctx := context.Background()

	require.False(t, srv.Exists(stagingRoot))

	require.NoError(t, upload.EnsureStagingRoot(ctx, client, stagingRoot))
	assert.True(t, srv.Exists(stagingRoot))

	// Seed a child so we can tell the collection is not recreated.
	srv.MustWriteFile(t, stagingRoot+"/marker", []byte("x"))

	require.NoError(t, upload.EnsureStagingRoot(ctx, client, stagingRoot))
	assert.True(t, srv.Exists(stagingRoot+"/marker"), "existing root must not be replaced")
}

// TestClose_RetryAfterFailure verifies a failed finalize leaves the session
// writable so the caller can retry.
func TestClose_RetryAfterFailure(t *testing.T) {
	t.Parallel()

	srv, client := newStagedServer(t)
	ctx := context.Background()

	// A destination whose parent collection does not exist makes the
	// server-side assembly fail.
	s, err := upload.Open(ctx, client, "/no-such-dir/doc.txt", stagingRoot, nil)
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, 0, []byte("contents")))

	err = s.Close(ctx)
	require.Error(t, err)
	assert.False(t, upload.IsStateError(err))
	assert.Equal(t, upload.StateAccumulating, s.State(), "failed close stays retryable")

	// After the missing collection appears, the retry succeeds.
	srv.MustMkdir(t, "/no-such-dir")
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, []byte("contents"), srv.ReadFile(t, "/no-such-dir/doc.txt"))
}

// TestState_String covers the state labels used in errors and logs.
func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state upload.State
		want  string
	}{
		{upload.StateOpen, "Open"},
		{upload.StateAccumulating, "Accumulating"},
		{upload.StateFinalizing, "Finalizing"},
		{upload.StateClosed, "Closed"},
		{upload.StateAborted, "Aborted"},
		{upload.State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

// TestStateError_Message verifies the error text names both the operation
// and the state, since it surfaces in provider responses.
func TestStateError_Message(t *testing.T) {
	t.Parallel()

	err := &upload.StateError{Op: "write", State: upload.StateClosed}
	assert.Equal(t, "upload session: cannot write in state Closed", err.Error())
	assert.True(t, upload.IsStateError(fmt.Errorf("wrapped: %w", err)))
}

package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Size Class Selection Tests
// ============================================================================

func TestGet_SizeClasses(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"ZeroSize", 0, SmallSize},
		{"ControlFrame", 100, SmallSize},
		{"SmallBoundary", SmallSize, SmallSize},
		{"JustAboveSmall", SmallSize + 1, MediumSize},
		{"ListingFrame", 10 * 1024, MediumSize},
		{"MediumBoundary", MediumSize, MediumSize},
		{"JustAboveMedium", MediumSize + 1, LargeSize},
		{"PayloadFrame", 100 * 1024, LargeSize},
		{"LargeBoundary", LargeSize, LargeSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Get(tt.size)
			defer Put(buf)

			assert.Equal(t, tt.size, len(buf), "length must match the request")
			assert.Equal(t, tt.wantCap, cap(buf), "capacity must match the size class")
		})
	}
}

func TestGet_OversizedAllocatesDirectly(t *testing.T) {
	buf := Get(LargeSize + 1)
	defer Put(buf)

	assert.Equal(t, LargeSize+1, len(buf))
	assert.Equal(t, len(buf), cap(buf), "oversized buffers are exact allocations")
}

func TestGetUint32(t *testing.T) {
	buf := GetUint32(100 * 1024)
	defer Put(buf)

	assert.Equal(t, 100*1024, len(buf))
	assert.Equal(t, LargeSize, cap(buf))
}

// ============================================================================
// Put Tests
// ============================================================================

func TestPut_ToleratesForeignBuffers(t *testing.T) {
	require.NotPanics(t, func() { Put(nil) })
	require.NotPanics(t, func() { Put([]byte{}) })

	// A buffer that never came from Get is simply dropped.
	require.NotPanics(t, func() { Put(make([]byte, 777)) })

	// One with a matching capacity is adopted into the pool.
	require.NotPanics(t, func() { Put(make([]byte, SmallSize)) })
}

func TestPut_ReusesReturnedBuffer(t *testing.T) {
	pool := New(1024)

	buf := pool.Get(512)
	buf[0] = 0xAB
	pool.Put(buf)

	// sync.Pool gives no reuse guarantee, but a fresh buffer must still be
	// correctly sized regardless of whether it was recycled.
	again := pool.Get(512)
	defer pool.Put(again)
	assert.Equal(t, 512, len(again))
	assert.Equal(t, 1024, cap(again))
}

// ============================================================================
// Custom Pool Tests
// ============================================================================

func TestNew_CustomClasses(t *testing.T) {
	pool := New(512, 4096, 32768)

	small := pool.Get(256)
	assert.Equal(t, 512, cap(small))
	pool.Put(small)

	medium := pool.Get(2000)
	assert.Equal(t, 4096, cap(medium))
	pool.Put(medium)

	large := pool.Get(10000)
	assert.Equal(t, 32768, cap(large))
	pool.Put(large)

	over := pool.Get(100000)
	assert.Equal(t, 100000, cap(over))
	pool.Put(over)
}

func TestNew_NoClasses(t *testing.T) {
	pool := New()

	// Every request falls through to a direct allocation.
	buf := pool.Get(123)
	assert.Equal(t, 123, len(buf))
	assert.Equal(t, 123, cap(buf))
	require.NotPanics(t, func() { pool.Put(buf) })
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestPool_ConcurrentGetPut(t *testing.T) {
	const goroutines = 10
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				size := (id*100 + j) % (500 * 1024)
				buf := Get(size)
				if len(buf) > 0 {
					buf[0] = byte(id)
				}
				Put(buf)
			}
		}(i)
	}

	wg.Wait()
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkGet(b *testing.B) {
	b.Run("Small", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := Get(1024)
			Put(buf)
		}
	})

	b.Run("Medium", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := Get(32 * 1024)
			Put(buf)
		}
	})

	b.Run("Large", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf := Get(512 * 1024)
			Put(buf)
		}
	})
}

func BenchmarkGetParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := Get(1024)
			Put(buf)
		}
	})
}

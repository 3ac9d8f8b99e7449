// Package bufpool provides a tiered buffer pool for frame and payload
// buffers.
//
// The provider protocol is length-prefixed, so every request and response
// passes through a transient []byte whose size is known up front. Pooling
// those buffers keeps the per-request allocation count flat regardless of
// throughput.
//
// Three size classes cover the traffic shapes the daemon sees:
//   - small (4 KiB): control frames — metadata, open/close, unmount
//   - medium (64 KiB): directory listings and mid-sized read frames
//   - large (1 MiB): bulk read/write payload frames
//
// Requests above the large class are allocated directly and never pooled,
// so a single oversized frame cannot pin memory for the life of the
// process.
//
// All operations are safe for concurrent use; the tiers are sync.Pools.
package bufpool

import (
	"sync"
)

// Size classes for the default pool.
const (
	SmallSize  = 4 << 10
	MediumSize = 64 << 10
	LargeSize  = 1 << 20
)

// tier is one size class: buffers of exactly size bytes.
type tier struct {
	size int
	pool sync.Pool
}

// Pool hands out byte slices from fixed size classes, in ascending order.
type Pool struct {
	tiers []*tier
}

// New creates a pool with the given class sizes, which must be ascending.
func New(sizes ...int) *Pool {
	p := &Pool{}
	for _, size := range sizes {
		t := &tier{size: size}
		t.pool.New = func() any {
			buf := make([]byte, t.size)
			return &buf
		}
		p.tiers = append(p.tiers, t)
	}
	return p
}

// Get returns a byte slice of length size. The backing array may be larger;
// it comes from the smallest class that fits. Sizes above the largest class
// are allocated directly and will not be pooled.
//
// Callers must hand the slice back with Put when done with it.
func (p *Pool) Get(size int) []byte {
	for _, t := range p.tiers {
		if size <= t.size {
			buf := *(t.pool.Get().(*[]byte))
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns a buffer obtained from Get. Buffers whose capacity does not
// match a size class (including oversized direct allocations) are left for
// the garbage collector. The buffer must not be used after Put.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for _, t := range p.tiers {
		if cap(buf) == t.size {
			full := buf[:t.size]
			t.pool.Put(&full)
			return
		}
	}
}

// globalPool serves the package-level Get/Put used by the frame codec.
var globalPool = New(SmallSize, MediumSize, LargeSize)

// Get returns a byte slice of length size from the shared pool.
//
//	buf := bufpool.Get(size)
//	defer bufpool.Put(buf)
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the shared pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}

// GetUint32 is Get for protocols whose length prefixes are uint32.
func GetUint32(size uint32) []byte {
	return globalPool.Get(int(size))
}

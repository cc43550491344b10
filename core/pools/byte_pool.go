// Package pools provides size-tiered byte buffer pooling for connection I/O.
package pools

import (
	"sync"
	"sync/atomic"
)

// BytePool is a multi-tiered byte slice pool for different size classes
type BytePool struct {
	pools []*sync.Pool
	sizes []int

	gets   atomic.Uint64
	puts   atomic.Uint64
	misses atomic.Uint64
}

// Size tiers tuned for request buffers: small GETs fit the first two tiers,
// bodies up to the default header limit fit the third.
var defaultSizes = []int{
	512,
	2048,
	8192,
	32768,
}

// NewBytePool creates a new byte pool with standard size tiers
func NewBytePool() *BytePool {
	return NewBytePoolWithSizes(defaultSizes)
}

// NewBytePoolWithSizes creates a byte pool with custom size tiers.
// Sizes must be ascending.
func NewBytePoolWithSizes(sizes []int) *BytePool {
	bp := &BytePool{
		pools: make([]*sync.Pool, len(sizes)),
		sizes: append([]int(nil), sizes...),
	}

	for i, size := range bp.sizes {
		sz := size
		bp.pools[i] = &sync.Pool{
			New: func() any {
				buf := make([]byte, sz)
				return &buf
			},
		}
	}

	return bp
}

// Get returns a byte slice of length size. Its capacity is the tier size,
// or exactly size when no tier is large enough.
func (bp *BytePool) Get(size int) []byte {
	bp.gets.Add(1)
	for i, poolSize := range bp.sizes {
		if size <= poolSize {
			bufPtr := bp.pools[i].Get().(*[]byte)
			return (*bufPtr)[:size]
		}
	}

	bp.misses.Add(1)
	return make([]byte, size)
}

// Put returns a byte slice to the pool. Slices whose capacity does not
// match a tier are left to the GC.
func (bp *BytePool) Put(buf []byte) {
	capacity := cap(buf)
	for i, poolSize := range bp.sizes {
		if capacity == poolSize {
			bp.puts.Add(1)
			buf = buf[:capacity]
			bp.pools[i].Put(&buf)
			return
		}
	}
}

// Grow returns a buffer with room for at least need bytes holding a copy of
// buf's contents. The old buffer is returned to the pool.
func (bp *BytePool) Grow(buf []byte, need int) []byte {
	if need <= cap(buf) {
		return buf[:need]
	}
	grown := bp.Get(need)
	copy(grown, buf)
	bp.Put(buf)
	return grown
}

// MaxTier returns the largest pooled size
func (bp *BytePool) MaxTier() int {
	if len(bp.sizes) == 0 {
		return 0
	}
	return bp.sizes[len(bp.sizes)-1]
}

// BytePoolStats reports pool usage counters
type BytePoolStats struct {
	TotalGets   uint64 `json:"gets"`
	TotalPuts   uint64 `json:"puts"`
	TotalMisses uint64 `json:"misses"`
}

// Stats returns pool statistics
func (bp *BytePool) Stats() BytePoolStats {
	return BytePoolStats{
		TotalGets:   bp.gets.Load(),
		TotalPuts:   bp.puts.Load(),
		TotalMisses: bp.misses.Load(),
	}
}

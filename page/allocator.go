package page

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultPageBytes is the default capacity of a page buffer. A
// PageBuilder flushes its current page downstream once the encoded
// records fill this capacity.
const DefaultPageBytes = 32 * 1024

// BufferAllocator supplies the byte buffers backing pages.
//
// One allocator may be shared by many concurrently running transcoding
// sessions across data partitions, so implementations must be safe for
// concurrent use.
type BufferAllocator interface {
	// Allocate returns an empty buffer with capacity of at least
	// minBytes (or the allocator's page size, whichever is larger).
	Allocate(minBytes int) []byte
	// Release returns a buffer obtained from Allocate to the pool.
	Release(buf []byte)
}

// PooledBufferAllocator recycles page buffers through per-size-class
// pools. Size classes are powers of two; the class pools live in a
// concurrent map so sessions on different goroutines never contend on
// a global lock.
type PooledBufferAllocator struct {
	pageBytes   int
	pools       *xsync.MapOf[int, *sync.Pool]
	outstanding *xsync.Counter
}

// NewPooledBufferAllocator creates an allocator handing out buffers of
// at least pageBytes capacity. pageBytes <= 0 selects DefaultPageBytes.
func NewPooledBufferAllocator(pageBytes int) *PooledBufferAllocator {
	if pageBytes <= 0 {
		pageBytes = DefaultPageBytes
	}
	return &PooledBufferAllocator{
		pageBytes:   pageBytes,
		pools:       xsync.NewMapOf[int, *sync.Pool](),
		outstanding: xsync.NewCounter(),
	}
}

// sizeClass rounds n up to the next power of two.
func sizeClass(n int) int {
	c := 1
	for c < n {
		c <<= 1
	}
	return c
}

func (a *PooledBufferAllocator) pool(class int) *sync.Pool {
	p, _ := a.pools.LoadOrCompute(class, func() *sync.Pool {
		return &sync.Pool{
			New: func() any {
				buf := make([]byte, 0, class)
				return &buf
			},
		}
	})
	return p
}

func (a *PooledBufferAllocator) Allocate(minBytes int) []byte {
	n := minBytes
	if n < a.pageBytes {
		n = a.pageBytes
	}
	buf := *a.pool(sizeClass(n)).Get().(*[]byte)
	a.outstanding.Inc()
	return buf[:0]
}

func (a *PooledBufferAllocator) Release(buf []byte) {
	if buf == nil {
		return
	}
	a.outstanding.Dec()
	class := sizeClass(cap(buf))
	if class != cap(buf) {
		// Buffer grew outside our size classes; let the GC have it.
		return
	}
	buf = buf[:0]
	a.pool(class).Put(&buf)
}

// Outstanding returns the number of allocated buffers not yet
// released. Useful for leak checks in tests.
func (a *PooledBufferAllocator) Outstanding() int64 {
	return a.outstanding.Value()
}

// Package page implements the in-memory batch representation consumed
// and produced by the projection stage: pages of encoded records, a
// sequential record cursor, a buffered record builder, and the pooled
// buffer allocator backing them.
package page

// Page is one batch of encoded records. Its buffer is owned by the
// allocator it was built from; ownership travels with the Page as it is
// handed downstream, and the final consumer returns the buffer by
// calling Release.
type Page struct {
	buf   []byte
	count int
	alloc BufferAllocator
}

func newPage(buf []byte, count int, alloc BufferAllocator) *Page {
	return &Page{buf: buf, count: count, alloc: alloc}
}

// NumRecords returns the number of records encoded in the page.
func (p *Page) NumRecords() int {
	return p.count
}

// Release returns the page's buffer to its allocator. It is idempotent
// and safe to call on error paths.
func (p *Page) Release() {
	if p.alloc != nil {
		p.alloc.Release(p.buf)
		p.alloc = nil
	}
	p.buf = nil
}

// PageOutput receives finished pages from a PageBuilder. Implementors
// take ownership of each added page and are responsible for releasing
// it. Finish signals that no more pages will arrive; Close releases
// resources and must be idempotent.
type PageOutput interface {
	Add(p *Page)
	Finish()
	Close()
}

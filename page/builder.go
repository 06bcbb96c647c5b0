package page

import (
	"encoding/json"
	"time"

	"github.com/robinkeunen/colstream/common"
	"github.com/robinkeunen/colstream/schema"
)

// PageBuilder accumulates records for one output schema and hands
// finished pages to a PageOutput.
//
// The builder owns its buffer sizing: callers only set cells and seal
// records, and the builder flushes the current page downstream once its
// capacity is reached. A builder is single-owner and not safe for
// concurrent use.
type PageBuilder struct {
	alloc   BufferAllocator
	schema  *schema.Schema
	out     PageOutput
	buf     []byte
	count   int
	row     []common.Value
	scratch []byte
	closed  bool
}

func NewPageBuilder(alloc BufferAllocator, s *schema.Schema, out PageOutput) *PageBuilder {
	return &PageBuilder{
		alloc:  alloc,
		schema: s,
		out:    out,
		buf:    alloc.Allocate(0),
		row:    make([]common.Value, s.NumColumns()),
	}
}

// Schema returns the schema the builder is bound to.
func (b *PageBuilder) Schema() *schema.Schema {
	return b.schema
}

func (b *PageBuilder) column(i int, want common.Type) {
	common.Assert(!b.closed, "use of closed PageBuilder")
	col := b.schema.Column(i)
	common.Assert(col.Type() == want, "column %s is %s, not %s", col.Name(), col.Type(), want)
}

// SetNull marks column i of the current record as NULL.
func (b *PageBuilder) SetNull(i int) {
	common.Assert(!b.closed, "use of closed PageBuilder")
	b.row[i] = common.NewNull(b.schema.Column(i).Type())
}

func (b *PageBuilder) SetBoolean(i int, v bool) {
	b.column(i, common.BooleanType)
	b.row[i] = common.NewBooleanValue(v)
}

func (b *PageBuilder) SetLong(i int, v int64) {
	b.column(i, common.LongType)
	b.row[i] = common.NewLongValue(v)
}

func (b *PageBuilder) SetDouble(i int, v float64) {
	b.column(i, common.DoubleType)
	b.row[i] = common.NewDoubleValue(v)
}

func (b *PageBuilder) SetString(i int, v string) {
	b.column(i, common.StringType)
	b.row[i] = common.NewStringValue(v)
}

func (b *PageBuilder) SetTimestamp(i int, v time.Time) {
	b.column(i, common.TimestampType)
	b.row[i] = common.NewTimestampValue(v)
}

func (b *PageBuilder) SetJSON(i int, doc json.RawMessage) {
	b.column(i, common.JSONType)
	b.row[i] = common.NewJSONValue(doc)
}

// AddRecord seals the current record into the page buffer. Every cell
// must have been set since the previous AddRecord; a missing cell means
// the caller walked a different schema than the one bound here.
func (b *PageBuilder) AddRecord() {
	common.Assert(!b.closed, "use of closed PageBuilder")
	for i := range b.row {
		common.Assert(!b.row[i].IsNil(), "cell %d (%s) not set", i, b.schema.Column(i).Name())
	}

	b.scratch = encodeRecord(b.scratch[:0], b.schema.Columns(), b.row)
	if b.count > 0 && len(b.buf)+len(b.scratch) > cap(b.buf) {
		b.flush()
	}
	if len(b.scratch) > cap(b.buf) {
		// A single record larger than the page buffer; swap in a
		// buffer that fits rather than growing outside the allocator.
		b.alloc.Release(b.buf)
		b.buf = b.alloc.Allocate(len(b.scratch))
	}
	b.buf = append(b.buf, b.scratch...)
	b.count++

	for i := range b.row {
		b.row[i] = common.Value{}
	}
}

func (b *PageBuilder) flush() {
	if b.count == 0 {
		return
	}
	finished := newPage(b.buf, b.count, b.alloc)
	b.buf = b.alloc.Allocate(0)
	b.count = 0
	b.out.Add(finished)
}

// Finish flushes any buffered records downstream and signals the
// output that no more pages will arrive.
func (b *PageBuilder) Finish() {
	common.Assert(!b.closed, "Finish on closed PageBuilder")
	b.flush()
	b.out.Finish()
}

// Close releases the builder's buffer and closes the output. It is
// idempotent and safe to call without Finish on error paths; records
// buffered but not flushed are dropped.
func (b *PageBuilder) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.alloc.Release(b.buf)
	b.buf = nil
	b.out.Close()
}

package page

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/robinkeunen/colstream/common"
	"github.com/robinkeunen/colstream/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageCollector is a test PageOutput that keeps every page it is handed.
type pageCollector struct {
	pages    []*Page
	finished bool
	closed   int
}

func (c *pageCollector) Add(p *Page) { c.pages = append(c.pages, p) }

func (c *pageCollector) Finish() { c.finished = true }

func (c *pageCollector) Close() { c.closed++ }

func allTypesSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return schema.NewBuilder().
		Add("flag", common.BooleanType).
		Add("count", common.LongType).
		Add("ratio", common.DoubleType).
		Add("label", common.StringType).
		Add("at", common.TimestampType).
		Add("payload", common.JSONType).
		MustBuild()
}

func TestBuilderReaderRoundTrip(t *testing.T) {
	s := allTypesSchema(t)
	alloc := NewPooledBufferAllocator(0)
	out := &pageCollector{}
	b := NewPageBuilder(alloc, s, out)

	at := time.Date(2024, 11, 5, 8, 30, 0, 123456789, time.UTC)
	doc := json.RawMessage(`{"k":"v"}`)

	b.SetBoolean(0, true)
	b.SetLong(1, 9001)
	b.SetDouble(2, 0.25)
	b.SetString(3, "first")
	b.SetTimestamp(4, at)
	b.SetJSON(5, doc)
	b.AddRecord()

	// Second record is NULL in every column.
	for i := 0; i < s.NumColumns(); i++ {
		b.SetNull(i)
	}
	b.AddRecord()

	b.Finish()
	assert.True(t, out.finished)
	require.Len(t, out.pages, 1)
	assert.Equal(t, 2, out.pages[0].NumRecords())

	r := NewPageReader(s)
	r.SetPage(out.pages[0])

	require.True(t, r.NextRecord())
	assert.Equal(t, true, r.GetBoolean(0))
	assert.Equal(t, int64(9001), r.GetLong(1))
	assert.Equal(t, 0.25, r.GetDouble(2))
	assert.Equal(t, "first", r.GetString(3))
	assert.Equal(t, at, r.GetTimestamp(4))
	assert.Equal(t, doc, r.GetJSON(5))

	require.True(t, r.NextRecord())
	for i := 0; i < s.NumColumns(); i++ {
		assert.True(t, r.IsNull(i), "column %d should be NULL", i)
	}

	assert.False(t, r.NextRecord())

	r.Close()
	b.Close()
	assert.Equal(t, int64(0), alloc.Outstanding())
}

func TestBuilderFlushesOnCapacity(t *testing.T) {
	s := schema.NewBuilder().Add("text", common.StringType).MustBuild()
	// Small pages so a handful of records spans several of them.
	alloc := NewPooledBufferAllocator(64)
	out := &pageCollector{}
	b := NewPageBuilder(alloc, s, out)

	const records = 20
	for i := 0; i < records; i++ {
		b.SetString(0, strings.Repeat("x", 20))
		b.AddRecord()
	}
	b.Finish()

	assert.Greater(t, len(out.pages), 1, "records should have spilled across pages")
	total := 0
	for _, p := range out.pages {
		total += p.NumRecords()
	}
	assert.Equal(t, records, total)

	// Order must be preserved across the implicit flushes.
	r := NewPageReader(s)
	seen := 0
	for _, p := range out.pages {
		r.SetPage(p)
		for r.NextRecord() {
			seen++
		}
	}
	assert.Equal(t, records, seen)
	r.Close()
	b.Close()
	assert.Equal(t, int64(0), alloc.Outstanding())
}

func TestOversizedRecord(t *testing.T) {
	s := schema.NewBuilder().Add("text", common.StringType).MustBuild()
	alloc := NewPooledBufferAllocator(32)
	out := &pageCollector{}
	b := NewPageBuilder(alloc, s, out)

	big := strings.Repeat("y", 500)
	b.SetString(0, big)
	b.AddRecord()
	b.Finish()

	require.Len(t, out.pages, 1)
	r := NewPageReader(s)
	r.SetPage(out.pages[0])
	require.True(t, r.NextRecord())
	assert.Equal(t, big, r.GetString(0))
	r.Close()
	b.Close()
}

func TestAddRecordRequiresEveryCell(t *testing.T) {
	s := schema.NewBuilder().
		Add("id", common.LongType).
		Add("name", common.StringType).
		MustBuild()
	b := NewPageBuilder(NewPooledBufferAllocator(0), s, &pageCollector{})
	defer b.Close()

	b.SetLong(0, 7)
	assert.Panics(t, func() { b.AddRecord() }, "unset cell must fail fast")
}

func TestSetterTypePrecondition(t *testing.T) {
	s := schema.NewBuilder().Add("id", common.LongType).MustBuild()
	b := NewPageBuilder(NewPooledBufferAllocator(0), s, &pageCollector{})
	defer b.Close()

	assert.Panics(t, func() { b.SetString(0, "oops") })
	assert.Panics(t, func() { b.SetLong(1, 1) }, "ordinal out of range")
}

func TestCloseIsIdempotent(t *testing.T) {
	s := schema.NewBuilder().Add("id", common.LongType).MustBuild()
	alloc := NewPooledBufferAllocator(0)
	out := &pageCollector{}

	b := NewPageBuilder(alloc, s, out)
	b.SetLong(0, 1)
	b.AddRecord()
	// Close without Finish: buffered records are dropped, not leaked.
	b.Close()
	b.Close()
	assert.Equal(t, 1, out.closed)
	assert.Empty(t, out.pages)

	r := NewPageReader(s)
	r.Close()
	r.Close()
	assert.Equal(t, int64(0), alloc.Outstanding())
}

func TestReaderReleasesPreviousPage(t *testing.T) {
	s := schema.NewBuilder().Add("id", common.LongType).MustBuild()
	alloc := NewPooledBufferAllocator(0)
	out := &pageCollector{}
	b := NewPageBuilder(alloc, s, out)

	b.SetLong(0, 1)
	b.AddRecord()
	b.flush()
	b.SetLong(0, 2)
	b.AddRecord()
	b.flush()
	require.Len(t, out.pages, 2)

	r := NewPageReader(s)
	r.SetPage(out.pages[0])
	r.SetPage(out.pages[1])
	r.Close()
	b.Close()
	assert.Equal(t, int64(0), alloc.Outstanding())

	// Releasing an already-released page is a no-op.
	out.pages[0].Release()
}

func TestPooledAllocatorRecycles(t *testing.T) {
	alloc := NewPooledBufferAllocator(128)

	buf := alloc.Allocate(0)
	assert.Equal(t, 0, len(buf))
	assert.GreaterOrEqual(t, cap(buf), 128)
	assert.Equal(t, int64(1), alloc.Outstanding())

	big := alloc.Allocate(1000)
	assert.GreaterOrEqual(t, cap(big), 1000)
	assert.Equal(t, int64(2), alloc.Outstanding())

	alloc.Release(buf)
	alloc.Release(big)
	alloc.Release(nil)
	assert.Equal(t, int64(0), alloc.Outstanding())
}

package page

import (
	"encoding/json"
	"time"

	"github.com/robinkeunen/colstream/common"
	"github.com/robinkeunen/colstream/schema"
)

// PageReader is a sequential cursor over the records of a page. The
// reader owns each page bound to it: binding the next page (or closing
// the reader) releases the previous one. A reader is single-owner and
// not safe for concurrent use.
type PageReader struct {
	schema    *schema.Schema
	page      *Page
	off       int
	remaining int
	row       []common.Value
	closed    bool
}

func NewPageReader(s *schema.Schema) *PageReader {
	return &PageReader{
		schema: s,
		row:    make([]common.Value, s.NumColumns()),
	}
}

// Schema returns the schema the reader is bound to.
func (r *PageReader) Schema() *schema.Schema {
	return r.schema
}

// SetPage binds the reader to a new page, releasing the previous one.
func (r *PageReader) SetPage(p *Page) {
	common.Assert(!r.closed, "use of closed PageReader")
	if r.page != nil {
		r.page.Release()
	}
	r.page = p
	r.off = 0
	r.remaining = p.NumRecords()
}

// NextRecord advances to the next record of the bound page, decoding
// its cells. It returns false once the page is exhausted.
func (r *PageReader) NextRecord() bool {
	if r.remaining == 0 {
		return false
	}
	r.off = decodeRecord(r.page.buf, r.off, r.schema.Columns(), r.row)
	r.remaining--
	if r.remaining == 0 {
		common.Assert(r.off == len(r.page.buf), "trailing bytes after last record in page")
	}
	return true
}

// IsNull reports whether column i of the current record is NULL.
func (r *PageReader) IsNull(i int) bool {
	return r.cell(i).IsNull()
}

func (r *PageReader) GetBoolean(i int) bool {
	return r.cell(i).BooleanValue()
}

func (r *PageReader) GetLong(i int) int64 {
	return r.cell(i).LongValue()
}

func (r *PageReader) GetDouble(i int) float64 {
	return r.cell(i).DoubleValue()
}

func (r *PageReader) GetString(i int) string {
	return r.cell(i).StringValue()
}

func (r *PageReader) GetTimestamp(i int) time.Time {
	return r.cell(i).TimestampValue()
}

func (r *PageReader) GetJSON(i int) json.RawMessage {
	return r.cell(i).JSONValue()
}

func (r *PageReader) cell(i int) common.Value {
	v := r.row[i]
	common.Assert(!v.IsNil(), "no current record; call NextRecord first")
	return v
}

// Close releases the currently bound page. It is idempotent.
func (r *PageReader) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.page != nil {
		r.page.Release()
		r.page = nil
	}
	r.remaining = 0
}

package filter

import (
	"github.com/robinkeunen/colstream/common"
	"github.com/robinkeunen/colstream/page"
	"github.com/robinkeunen/colstream/schema"
	"go.uber.org/zap"
)

// PageConverter is the record transcoder for one transaction. It
// consumes input pages, copies every retained cell (value or NULL
// marker) into the output builder in native encoding, and lets the
// builder flush finished pages downstream. It implements
// page.PageOutput so it can sit directly in a pipeline.
//
// A converter assumes schema negotiation already succeeded and does no
// per-record validation: a mismatch between the projection and the
// bound cursor or builder is a wiring bug upstream and fails fast.
type PageConverter struct {
	input   *schema.Schema
	proj    Projection
	reader  *page.PageReader
	builder *page.PageBuilder
	logger  *zap.Logger
}

// NewPageConverter creates a converter from a projection and the
// reader/builder bound to the negotiated input and output schemas.
func NewPageConverter(proj Projection, reader *page.PageReader, builder *page.PageBuilder, logger *zap.Logger) *PageConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	input := reader.Schema()
	common.Assert(len(proj) == input.NumColumns(),
		"projection covers %d columns but the input cursor has %d", len(proj), input.NumColumns())
	common.Assert(proj.NumRetained() == builder.Schema().NumColumns(),
		"projection retains %d columns but the output builder has %d", proj.NumRetained(), builder.Schema().NumColumns())
	return &PageConverter{
		input:   input,
		proj:    proj,
		reader:  reader,
		builder: builder,
		logger:  logger,
	}
}

// Add transcodes every record of the page in arrival order. The
// converter takes ownership of the page; it is released when the next
// page is bound or the converter is closed.
func (c *PageConverter) Add(p *page.Page) {
	records := p.NumRecords()
	c.reader.SetPage(p)
	for c.reader.NextRecord() {
		for _, col := range c.input.Columns() {
			in := col.Index()
			out, retained := c.proj.OutputIndex(in)
			if !retained {
				continue
			}
			if c.reader.IsNull(in) {
				c.builder.SetNull(out)
				continue
			}
			switch col.Type() {
			case common.BooleanType:
				c.builder.SetBoolean(out, c.reader.GetBoolean(in))
			case common.LongType:
				c.builder.SetLong(out, c.reader.GetLong(in))
			case common.DoubleType:
				c.builder.SetDouble(out, c.reader.GetDouble(in))
			case common.StringType:
				c.builder.SetString(out, c.reader.GetString(in))
			case common.TimestampType:
				c.builder.SetTimestamp(out, c.reader.GetTimestamp(in))
			case common.JSONType:
				c.builder.SetJSON(out, c.reader.GetJSON(in))
			default:
				common.Assert(false, "unhandled column type %s", col.Type())
			}
		}
		c.builder.AddRecord()
	}
	c.logger.Debug("page transcoded", zap.Int("records", records))
}

// Finish flushes buffered output records downstream. No more pages may
// be added afterwards.
func (c *PageConverter) Finish() {
	c.builder.Finish()
}

// Close releases the cursor and builder resources. It is idempotent
// and safe to call without Finish, e.g. after an upstream error.
func (c *PageConverter) Close() {
	c.reader.Close()
	c.builder.Close()
}

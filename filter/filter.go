package filter

import (
	"github.com/google/uuid"
	"github.com/robinkeunen/colstream/page"
	"github.com/robinkeunen/colstream/schema"
	"go.uber.org/zap"
)

// RemoveColumnsFilter is the front door of the stage, mirroring the
// two-phase contract of the host pipeline: Transaction negotiates the
// output schema once, then Open binds a transcoding session for the
// data flow. The filter itself is stateless; sessions own all mutable
// state, so independent partitions may run sessions in parallel.
type RemoveColumnsFilter struct {
	logger *zap.Logger
}

// NewRemoveColumnsFilter creates the filter. A nil logger disables
// logging.
func NewRemoveColumnsFilter(logger *zap.Logger) *RemoveColumnsFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoveColumnsFilter{logger: logger}
}

// Transaction validates the directive and derives the output schema and
// projection. It is called once per transaction, before any page flows;
// a ConfigError here aborts the transaction with no data moved.
func (f *RemoveColumnsFilter) Transaction(cfg Config, input *schema.Schema) (*schema.Schema, Projection, error) {
	output, proj, err := Resolve(input, cfg)
	if err != nil {
		f.logger.Error("column selection rejected", zap.Error(err))
		return nil, nil, err
	}
	f.logger.Info("output schema resolved",
		zap.Int("input_columns", input.NumColumns()),
		zap.Int("output_columns", output.NumColumns()),
		zap.String("output_schema", output.String()))
	return output, proj, nil
}

// Open starts a transcoding session bound to the negotiated schemas,
// feeding finished pages to out. The caller feeds pages with Add, then
// Finish after the last one; Close must always be called.
func (f *RemoveColumnsFilter) Open(input, output *schema.Schema, proj Projection, alloc page.BufferAllocator, out page.PageOutput) *PageConverter {
	logger := f.logger.With(zap.String("session", uuid.NewString()))
	reader := page.NewPageReader(input)
	builder := page.NewPageBuilder(alloc, output, out)
	logger.Debug("session opened")
	return NewPageConverter(proj, reader, builder, logger)
}

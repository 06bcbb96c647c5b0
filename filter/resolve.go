package filter

import (
	"github.com/robinkeunen/colstream/common"
	"github.com/robinkeunen/colstream/schema"
)

// Projection maps each input column ordinal to its output ordinal, or
// -1 when the column is projected out. It is built once per
// transaction by Resolve and is read-only afterwards, so one Projection
// may back every record of every page of the transaction.
type Projection []int

// OutputIndex returns the output ordinal for input ordinal i, and
// whether the column is present in the output at all.
func (p Projection) OutputIndex(i int) (int, bool) {
	idx := p[i]
	return idx, idx >= 0
}

// NumRetained returns the number of input columns present in the
// output.
func (p Projection) NumRetained() int {
	n := 0
	for _, idx := range p {
		if idx >= 0 {
			n++
		}
	}
	return n
}

// Resolve validates the directive against the input schema and derives
// the output schema and the ordinal lookup table.
//
// The output schema is always a sub-sequence of the input schema:
// iterating input columns in order, a column is included iff its name
// is absent from the matched remove-set, or present in the matched
// keep-set. Names, types and relative order are never changed.
func Resolve(input *schema.Schema, cfg Config) (*schema.Schema, Projection, error) {
	if len(cfg.Remove) > 0 && len(cfg.Keep) > 0 {
		return nil, nil, common.Errorf(common.ConfigError,
			"remove: and keep: must not be multi-select")
	}
	if len(cfg.Remove) == 0 && len(cfg.Keep) == 0 {
		return nil, nil, common.Errorf(common.ConfigError,
			"must require remove: or keep:")
	}

	names, keep := cfg.Remove, false
	if len(cfg.Keep) > 0 {
		names, keep = cfg.Keep, true
	}
	matched, err := matchColumns(input, names, cfg.AcceptUnmatchedColumns)
	if err != nil {
		return nil, nil, err
	}

	b := schema.NewBuilder()
	for _, col := range input.Columns() {
		_, inSet := matched[col.Name()]
		if inSet == keep {
			b.Add(col.Name(), col.Type())
		}
	}
	output, err := b.Build()
	if err != nil {
		// Input column names are unique, so the derived sub-sequence
		// cannot collide; surfaced anyway rather than swallowed.
		return nil, nil, err
	}

	proj := make(Projection, input.NumColumns())
	for i, col := range input.Columns() {
		proj[i] = -1
		if out, err := output.LookupColumn(col.Name()); err == nil {
			proj[i] = out.Index()
		}
	}
	return output, proj, nil
}

// matchColumns resolves the directive names into the set of names that
// exist in the schema. Duplicate names are idempotent. An unmatched
// name is a ConfigError unless acceptUnmatched is set, in which case it
// is dropped from the effective selection.
func matchColumns(s *schema.Schema, names []string, acceptUnmatched bool) (map[string]struct{}, error) {
	matched := make(map[string]struct{}, len(names))
	for _, name := range names {
		if s.HasColumn(name) {
			matched[name] = struct{}{}
			continue
		}
		if !acceptUnmatched {
			return nil, common.Errorf(common.ConfigError,
				"column '%s' doesn't exist in the schema", name)
		}
	}
	return matched, nil
}

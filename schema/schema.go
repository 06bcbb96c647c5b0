// Package schema defines the immutable column descriptors shared by the
// reader and builder sides of the projection stage.
package schema

import (
	"fmt"
	"strings"

	"github.com/robinkeunen/colstream/common"
	"github.com/tidwall/btree"
)

// Column is an immutable descriptor of one named, typed column. Its
// index is the 0-based ordinal within the owning schema and is fixed
// for the schema's lifetime.
type Column struct {
	index int
	name  string
	typ   common.Type
}

func NewColumn(index int, name string, typ common.Type) Column {
	common.Assert(index >= 0, "column index must be non-negative")
	common.Assert(typ != common.DefaultType, "column must carry a concrete type")
	return Column{index: index, name: name, typ: typ}
}

func (c Column) Index() int { return c.index }

func (c Column) Name() string { return c.name }

func (c Column) Type() common.Type { return c.typ }

func (c Column) String() string {
	return fmt.Sprintf("%s:%s", c.name, c.typ)
}

// Schema is an ordered, dense sequence of Columns. Column names are
// unique and case-sensitive. A Schema is immutable once built and may
// be read concurrently without locking.
type Schema struct {
	columns []Column
	// byName maps a column name to its ordinal. An ordered map keeps
	// name iteration deterministic for error messages.
	byName *btree.Map[string, int]
}

// NumColumns returns the number of columns in the schema.
func (s *Schema) NumColumns() int {
	return len(s.columns)
}

// Column returns the column at ordinal i.
func (s *Schema) Column(i int) Column {
	common.Assert(i >= 0 && i < len(s.columns), "column ordinal %d out of range [0, %d)", i, len(s.columns))
	return s.columns[i]
}

// Columns returns the columns in ordinal order. The returned slice
// must not be modified.
func (s *Schema) Columns() []Column {
	return s.columns
}

// LookupColumn finds a column by name. It returns a NoSuchColumnError
// when the name does not exist in the schema.
func (s *Schema) LookupColumn(name string) (Column, error) {
	if idx, ok := s.byName.Get(name); ok {
		return s.columns[idx], nil
	}
	return Column{}, common.Errorf(common.NoSuchColumnError,
		"column '%s' doesn't exist in the schema %s", name, s)
}

// HasColumn reports whether a column with the given name exists.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.byName.Get(name)
	return ok
}

func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Builder accumulates columns and produces an immutable Schema.
type Builder struct {
	columns []Column
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a column with the next ordinal. Returns the builder for
// chaining.
func (b *Builder) Add(name string, typ common.Type) *Builder {
	b.columns = append(b.columns, NewColumn(len(b.columns), name, typ))
	return b
}

// Build validates name uniqueness and returns the schema. An empty
// schema is valid: a keep-directive that matches nothing derives one.
func (b *Builder) Build() (*Schema, error) {
	byName := &btree.Map[string, int]{}
	for _, c := range b.columns {
		if _, exists := byName.Get(c.name); exists {
			return nil, common.Errorf(common.DuplicateColumnError,
				"duplicate column name '%s'", c.name)
		}
		byName.Set(c.name, c.index)
	}
	return &Schema{columns: b.columns, byName: byName}, nil
}

// MustBuild is Build for schemas known to be well-formed, typically in
// tests.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	common.Assert(err == nil, "schema build failed: %v", err)
	return s
}

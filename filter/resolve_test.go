package filter

import (
	"testing"

	"github.com/robinkeunen/colstream/common"
	"github.com/robinkeunen/colstream/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inputSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return schema.NewBuilder().
		Add("id", common.LongType).
		Add("name", common.StringType).
		Add("score", common.DoubleType).
		MustBuild()
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.IsType(t, common.Error{}, err)
	assert.Equal(t, common.ConfigError, err.(common.Error).Code)
}

func TestRemoveDirective(t *testing.T) {
	output, proj, err := Resolve(inputSchema(t), Config{Remove: []string{"name"}})
	require.NoError(t, err)

	assert.Equal(t, "[id:long, score:double]", output.String())
	assert.Equal(t, Projection{0, -1, 1}, proj)
}

func TestKeepDirective(t *testing.T) {
	output, proj, err := Resolve(inputSchema(t), Config{Keep: []string{"id"}})
	require.NoError(t, err)

	assert.Equal(t, "[id:long]", output.String())
	assert.Equal(t, Projection{0, -1, -1}, proj)
}

func TestDirectiveExclusivity(t *testing.T) {
	input := inputSchema(t)

	_, _, err := Resolve(input, Config{Remove: []string{"name"}, Keep: []string{"id"}})
	requireConfigError(t, err)

	_, _, err = Resolve(input, Config{})
	requireConfigError(t, err)
}

func TestOutputPreservesInputOrder(t *testing.T) {
	// Keep listed out of input order: output order must follow input.
	output, _, err := Resolve(inputSchema(t), Config{Keep: []string{"score", "id"}})
	require.NoError(t, err)
	assert.Equal(t, "[id:long, score:double]", output.String())
}

func TestComplementarity(t *testing.T) {
	input := inputSchema(t)
	names := []string{"id", "score"}

	removed, _, err := Resolve(input, Config{Remove: names})
	require.NoError(t, err)
	kept, _, err := Resolve(input, Config{Keep: names})
	require.NoError(t, err)

	assert.Equal(t, "[name:string]", removed.String())
	assert.Equal(t, "[id:long, score:double]", kept.String())
	assert.Equal(t, input.NumColumns(), removed.NumColumns()+kept.NumColumns())
}

func TestUnmatchedColumnRejected(t *testing.T) {
	_, _, err := Resolve(inputSchema(t), Config{Remove: []string{"ghost"}})
	requireConfigError(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestUnmatchedColumnAccepted(t *testing.T) {
	output, proj, err := Resolve(inputSchema(t),
		Config{Remove: []string{"ghost", "name"}, AcceptUnmatchedColumns: true})
	require.NoError(t, err)
	assert.Equal(t, "[id:long, score:double]", output.String())
	assert.Equal(t, 2, proj.NumRetained())
}

func TestKeepNothingYieldsEmptySchema(t *testing.T) {
	output, proj, err := Resolve(inputSchema(t),
		Config{Keep: []string{"ghost"}, AcceptUnmatchedColumns: true})
	require.NoError(t, err)

	assert.Equal(t, 0, output.NumColumns())
	assert.Equal(t, Projection{-1, -1, -1}, proj)
	assert.Equal(t, 0, proj.NumRetained())
}

func TestDuplicateDirectiveNamesAreIdempotent(t *testing.T) {
	single, projSingle, err := Resolve(inputSchema(t), Config{Remove: []string{"name"}})
	require.NoError(t, err)
	doubled, projDoubled, err := Resolve(inputSchema(t), Config{Remove: []string{"name", "name"}})
	require.NoError(t, err)

	assert.Equal(t, single.String(), doubled.String())
	assert.Equal(t, projSingle, projDoubled)
}

func TestProjectionRetainsTypes(t *testing.T) {
	input := inputSchema(t)
	output, proj, err := Resolve(input, Config{Remove: []string{"id"}})
	require.NoError(t, err)

	for _, col := range input.Columns() {
		out, retained := proj.OutputIndex(col.Index())
		if !retained {
			continue
		}
		got := output.Column(out)
		assert.Equal(t, col.Name(), got.Name())
		assert.Equal(t, col.Type(), got.Type())
	}
}

package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csight/csight/internal/store"
)

// newTestGraphStore seeds a graph around parse_header:
// parse_config -> parse_header -> read_token, defined across files.
func newTestGraphStore(t *testing.T) *store.GraphStore {
	t.Helper()
	g, err := store.NewGraphStore(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	ctx := context.Background()
	fns := []*store.Function{
		{Name: "parse_config", FilePath: "src/config.c", StartLine: 5, EndLine: 60},
		{Name: "parse_header", FilePath: "src/parser.c", StartLine: 12, EndLine: 48, Snippet: "int parse_header(buf_t *b) {"},
		{Name: "read_token", FilePath: "src/lexer.c", StartLine: 3, EndLine: 25},
	}
	for _, fn := range fns {
		require.NoError(t, g.AddFunction(ctx, fn))
	}
	require.NoError(t, g.AddCall(ctx, "parse_config", "parse_header"))
	require.NoError(t, g.AddCall(ctx, "parse_header", "read_token"))
	require.NoError(t, g.AddInclude(ctx, "src/parser.c", "include/lexer.h"))
	return g
}

func TestCallGraphAdapter_FunctionEntity(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewCallGraphAdapter(g, 0, nil)
	require.Equal(t, KindCallGraph, a.Kind())
	require.True(t, a.Available(context.Background()))

	candidates, err := a.Retrieve(context.Background(), &Query{
		Text:      "how does parse_header work",
		Functions: []string{"parse_header"},
	}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Definition comes first with the top native score.
	def := candidates[0]
	assert.Equal(t, UnitID{Path: "src/parser.c", Symbol: "parse_header"}, def.Unit)
	assert.Equal(t, "definition", def.Relation)
	assert.Equal(t, scoreDefinition, def.Score)
	assert.Equal(t, 12, def.StartLine)

	relations := map[string]string{}
	for _, c := range candidates[1:] {
		relations[c.Unit.Symbol] = c.Relation
	}
	assert.Equal(t, "caller", relations["parse_config"])
	assert.Equal(t, "callee", relations["read_token"])
}

func TestCallGraphAdapter_KeywordFallback(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewCallGraphAdapter(g, 0, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{
		Text:     "parsing logic",
		Keywords: []string{"parse"},
	}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	for _, c := range candidates {
		assert.Equal(t, "keyword_match", c.Relation)
		assert.Equal(t, scoreKeywordMatch, c.Score)
	}
}

func TestCallGraphAdapter_UnknownFunction(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewCallGraphAdapter(g, 0, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{
		Functions: []string{"no_such_fn"},
	}, 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestCallGraphAdapter_TopKBound(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewCallGraphAdapter(g, 0, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{
		Functions: []string{"parse_header"},
	}, 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "definition", candidates[0].Relation)
}

func TestCallGraphAdapter_MinScoreFloor(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewCallGraphAdapter(g, 0.9, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{
		Functions: []string{"parse_header"},
	}, 10)
	require.NoError(t, err)
	// Only the definition (1.0) clears a 0.9 floor.
	require.Len(t, candidates, 1)
	assert.Equal(t, "definition", candidates[0].Relation)
}

func TestCallGraphAdapter_AvailableEmpty(t *testing.T) {
	g, err := store.NewGraphStore(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	a := NewCallGraphAdapter(g, 0, nil)
	assert.False(t, a.Available(context.Background()))
}

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyAdapter_FileEntity(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewDependencyAdapter(g, 0, nil)
	require.Equal(t, KindDependency, a.Kind())
	require.True(t, a.Available(context.Background()))

	candidates, err := a.Retrieve(context.Background(), &Query{
		Files: []string{"src/parser.c"},
	}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, UnitID{Path: "include/lexer.h"}, c.Unit)
	assert.Equal(t, "includes", c.Relation)
	assert.Equal(t, scoreIncludes, c.Score)
}

func TestDependencyAdapter_ReverseDirection(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewDependencyAdapter(g, 0, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{
		Files: []string{"include/lexer.h"},
	}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "included_by", candidates[0].Relation)
	assert.Equal(t, scoreIncludedBy, candidates[0].Score)
}

func TestDependencyAdapter_FunctionEntityResolvesFile(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewDependencyAdapter(g, 0, nil)

	// parse_header lives in src/parser.c, which includes lexer.h.
	candidates, err := a.Retrieve(context.Background(), &Query{
		Functions: []string{"parse_header"},
	}, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "include/lexer.h", candidates[0].Unit.Path)
}

func TestDependencyAdapter_NoEntities(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewDependencyAdapter(g, 0, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{Text: "general question"}, 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestDependencyAdapter_MinScoreFloor(t *testing.T) {
	g := newTestGraphStore(t)
	a := NewDependencyAdapter(g, 0.6, nil)

	// included_by (0.5) falls below the floor, includes (0.7) passes.
	candidates, err := a.Retrieve(context.Background(), &Query{
		Files: []string{"include/lexer.h"},
	}, 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	candidates, err = a.Retrieve(context.Background(), &Query{
		Files: []string{"src/parser.c"},
	}, 10)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

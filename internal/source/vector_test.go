package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csight/csight/internal/store"
)

// stubEmbedder maps texts to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0, 1}, nil
}

func (s *stubEmbedder) Dimensions() int   { return 4 }
func (s *stubEmbedder) ModelName() string { return "stub" }
func (s *stubEmbedder) Close() error      { return nil }

func newTestVectorStore(t *testing.T) *store.HNSWStore {
	t.Helper()
	vs, err := store.NewHNSWStore(store.VectorStoreConfig{Dimensions: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = vs.Close() })

	ids := []string{"src/parser.c#parse_header", "src/lexer.c#read_token", "src/buf.c"}
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	require.NoError(t, vs.Add(context.Background(), ids, vectors))
	return vs
}

func TestVectorAdapter_Retrieve(t *testing.T) {
	vs := newTestVectorStore(t)
	emb := &stubEmbedder{vectors: map[string][]float32{
		"how does parse_header work": {1, 0.1, 0, 0},
	}}
	a := NewVectorAdapter(emb, vs, 0, nil)
	require.Equal(t, KindVector, a.Kind())
	require.True(t, a.Available(context.Background()))

	candidates, err := a.Retrieve(context.Background(), &Query{Text: "how does parse_header work"}, 2)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	best := candidates[0]
	assert.Equal(t, UnitID{Path: "src/parser.c", Symbol: "parse_header"}, best.Unit)
	assert.Greater(t, best.Score, candidates[1].Score)
	assert.GreaterOrEqual(t, best.Distance, 0.0)
}

func TestVectorAdapter_FileOnlyUnit(t *testing.T) {
	vs := newTestVectorStore(t)
	emb := &stubEmbedder{vectors: map[string][]float32{"buffers": {0, 0, 1, 0}}}
	a := NewVectorAdapter(emb, vs, 0, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{Text: "buffers"}, 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, UnitID{Path: "src/buf.c"}, candidates[0].Unit)
}

func TestVectorAdapter_MinScoreFloor(t *testing.T) {
	vs := newTestVectorStore(t)
	emb := &stubEmbedder{vectors: map[string][]float32{"q": {1, 0, 0, 0}}}
	a := NewVectorAdapter(emb, vs, 0.99, nil)

	candidates, err := a.Retrieve(context.Background(), &Query{Text: "q"}, 3)
	require.NoError(t, err)
	// Only the exact match survives a 0.99 similarity floor.
	require.Len(t, candidates, 1)
	assert.Equal(t, "src/parser.c#parse_header", candidates[0].Unit.String())
}

func TestVectorAdapter_EmbedFailure(t *testing.T) {
	vs := newTestVectorStore(t)
	a := NewVectorAdapter(&stubEmbedder{err: errors.New("ollama down")}, vs, 0, nil)

	_, err := a.Retrieve(context.Background(), &Query{Text: "q"}, 3)
	assert.Error(t, err)
}

func TestVectorAdapter_AvailableEmptyIndex(t *testing.T) {
	vs, err := store.NewHNSWStore(store.VectorStoreConfig{Dimensions: 4})
	require.NoError(t, err)
	defer func() { _ = vs.Close() }()

	a := NewVectorAdapter(&stubEmbedder{}, vs, 0, nil)
	assert.False(t, a.Available(context.Background()))
}

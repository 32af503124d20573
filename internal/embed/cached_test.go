package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder returns a fixed vector and counts Embed calls.
type countingEmbedder struct {
	calls int
	model string
}

func (m *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	return []float32{float32(len(text)), 1, 2}, nil
}

func (m *countingEmbedder) Dimensions() int   { return 3 }
func (m *countingEmbedder) ModelName() string { return m.model }
func (m *countingEmbedder) Close() error      { return nil }

func TestCachedEmbedder_HitSkipsInner(t *testing.T) {
	inner := &countingEmbedder{model: "test-model"}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	v1, err := cached.Embed(ctx, "where is parse_header")
	require.NoError(t, err)
	v2, err := cached.Embed(ctx, "where is parse_header")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedEmbedder_DistinctTexts(t *testing.T) {
	inner := &countingEmbedder{model: "test-model"}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := cached.Embed(ctx, "first")
	require.NoError(t, err)
	_, err = cached.Embed(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedder_KeyIncludesModel(t *testing.T) {
	a := NewCachedEmbedder(&countingEmbedder{model: "model-a"}, 10)
	b := NewCachedEmbedder(&countingEmbedder{model: "model-b"}, 10)

	assert.NotEqual(t, a.cacheKey("same text"), b.cacheKey("same text"))
}

func TestCachedEmbedder_Eviction(t *testing.T) {
	inner := &countingEmbedder{model: "test-model"}
	cached := NewCachedEmbedder(inner, 2)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		_, err := cached.Embed(ctx, q)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cached.Len())

	// "a" was evicted, so it costs another inner call.
	_, err := cached.Embed(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)
}

func TestCachedEmbedder_DefaultSize(t *testing.T) {
	cached := NewCachedEmbedder(&countingEmbedder{model: "m"}, 0)
	assert.Equal(t, 3, cached.Dimensions())
	assert.Equal(t, "m", cached.ModelName())
	require.NoError(t, cached.Close())
}

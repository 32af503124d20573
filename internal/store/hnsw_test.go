package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVector(dim int, seed float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = seed + float32(i)*0.01
	}
	return v
}

func newTestHNSW(t *testing.T) *HNSWStore {
	t.Helper()
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewHNSWStore_Defaults(t *testing.T) {
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 8})
	require.NoError(t, err)
	assert.Equal(t, "cos", s.config.Metric)
	assert.Equal(t, 16, s.config.M)
	assert.Equal(t, 8, s.Dimensions())

	_, err = NewHNSWStore(VectorStoreConfig{Dimensions: 0})
	assert.Error(t, err)
}

func TestHNSWStore_AddAndSearch(t *testing.T) {
	s := newTestHNSW(t)
	ctx := context.Background()

	ids := []string{"src/parser.c#parse_header", "src/lexer.c#read_token", "src/buf.c#buf_grow"}
	vectors := [][]float32{testVector(8, 1.0), testVector(8, 5.0), testVector(8, 9.0)}
	require.NoError(t, s.Add(ctx, ids, vectors))
	assert.Equal(t, 3, s.Count())

	results, err := s.Search(ctx, testVector(8, 1.0), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "src/parser.c#parse_header", results[0].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-3)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestHNSWStore_DimensionMismatch(t *testing.T) {
	s := newTestHNSW(t)
	ctx := context.Background()

	err := s.Add(ctx, []string{"a"}, [][]float32{testVector(4, 1.0)})
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDimensionMismatch{})

	_, err = s.Search(ctx, testVector(4, 1.0), 1)
	assert.Error(t, err)
}

func TestHNSWStore_UpdateExistingID(t *testing.T) {
	s := newTestHNSW(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, []string{"u"}, [][]float32{testVector(8, 1.0)}))
	require.NoError(t, s.Add(ctx, []string{"u"}, [][]float32{testVector(8, 7.0)}))
	assert.Equal(t, 1, s.Count())

	results, err := s.Search(ctx, testVector(8, 7.0), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "u", results[0].ID)
}

func TestHNSWStore_Delete(t *testing.T) {
	s := newTestHNSW(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, []string{"a", "b"}, [][]float32{testVector(8, 1.0), testVector(8, 5.0)}))
	require.NoError(t, s.Delete(ctx, []string{"a"}))
	assert.Equal(t, 1, s.Count())

	results, err := s.Search(ctx, testVector(8, 1.0), 5)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "a", r.ID)
	}
}

func TestHNSWStore_SearchEmpty(t *testing.T) {
	s := newTestHNSW(t)

	results, err := s.Search(context.Background(), testVector(8, 1.0), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHNSWStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.hnsw")

	s1, err := NewHNSWStore(VectorStoreConfig{Dimensions: 8})
	require.NoError(t, err)
	require.NoError(t, s1.Add(ctx, []string{"x", "y"}, [][]float32{testVector(8, 1.0), testVector(8, 5.0)}))
	require.NoError(t, s1.Save(path))
	require.NoError(t, s1.Close())

	s2, err := NewHNSWStore(VectorStoreConfig{Dimensions: 8})
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()
	require.NoError(t, s2.Load(path))
	assert.Equal(t, 2, s2.Count())

	results, err := s2.Search(ctx, testVector(8, 5.0), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "y", results[0].ID)
}

func TestHNSWStore_ClosedRejectsOps(t *testing.T) {
	s := newTestHNSW(t)
	require.NoError(t, s.Close())

	err := s.Add(context.Background(), []string{"a"}, [][]float32{testVector(8, 1.0)})
	assert.Error(t, err)
	_, err = s.Search(context.Background(), testVector(8, 1.0), 1)
	assert.Error(t, err)
}

func TestDistanceToScore(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		metric   string
		want     float32
	}{
		{"cosine identical", 0.0, "cos", 1.0},
		{"cosine orthogonal", 1.0, "cos", 0.5},
		{"l2 identical", 0.0, "l2", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, float64(tt.want), float64(distanceToScore(tt.distance, tt.metric)), 1e-4)
		})
	}
}

package query

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csight/csight/internal/source"
)

func fusedWith(unit source.UnitID, scores map[source.Kind]float64) *FusedCandidate {
	fc := &FusedCandidate{
		Unit:   unit,
		Scores: make([]*float64, len(source.Kinds())),
	}
	for kind, score := range scores {
		s := score
		fc.Scores[kind.Index()] = &s
	}
	return fc
}

func TestWeightedScorer_CorroborationBeatsSingleSource(t *testing.T) {
	scorer := NewWeightedScorer(0.15)

	single := fusedWith(source.UnitID{Path: "src/a.c", Symbol: "f"},
		map[source.Kind]float64{source.KindVector: 0.9})
	corroborated := fusedWith(source.UnitID{Path: "src/b.c", Symbol: "g"},
		map[source.Kind]float64{source.KindVector: 0.85, source.KindCallGraph: 0.9})

	assert.Greater(t, scorer.Score(corroborated), scorer.Score(single))
}

func TestWeightedScorer_AbsentSlotsDoNotDilute(t *testing.T) {
	scorer := NewWeightedScorer(0)

	one := fusedWith(source.UnitID{Path: "a"}, map[source.Kind]float64{source.KindVector: 0.8})
	// Mean over present slots only: 0.8, not 0.8/3.
	assert.InDelta(t, 0.8, scorer.Score(one), 1e-9)

	empty := &FusedCandidate{Scores: make([]*float64, 3)}
	assert.Zero(t, scorer.Score(empty))
}

func TestWeightedScorer_Weights(t *testing.T) {
	scorer := &WeightedScorer{Weights: []float64{2, 1, 1}}

	fc := fusedWith(source.UnitID{Path: "a"},
		map[source.Kind]float64{source.KindVector: 1.0, source.KindCallGraph: 0.5})
	// (1.0*2 + 0.5*1) / 3 = 0.8333...
	assert.InDelta(t, 2.5/3.0, scorer.Score(fc), 1e-9)
}

func TestRerank_DescendingWithDeterministicTies(t *testing.T) {
	scorer := NewWeightedScorer(0.15)
	fused := []*FusedCandidate{
		fusedWith(source.UnitID{Path: "src/z.c", Symbol: "z"}, map[source.Kind]float64{source.KindVector: 0.7}),
		fusedWith(source.UnitID{Path: "src/a.c", Symbol: "b"}, map[source.Kind]float64{source.KindVector: 0.7}),
		fusedWith(source.UnitID{Path: "src/a.c", Symbol: "a"}, map[source.Kind]float64{source.KindVector: 0.7}),
		fusedWith(source.UnitID{Path: "src/m.c", Symbol: "m"}, map[source.Kind]float64{source.KindVector: 0.9}),
	}

	ranked := Rerank(fused, scorer)
	require.Len(t, ranked, 4)

	assert.Equal(t, "src/m.c", ranked[0].Unit.Path)
	// Equal scores: ordered by path then symbol.
	assert.Equal(t, source.UnitID{Path: "src/a.c", Symbol: "a"}, ranked[1].Unit)
	assert.Equal(t, source.UnitID{Path: "src/a.c", Symbol: "b"}, ranked[2].Unit)
	assert.Equal(t, source.UnitID{Path: "src/z.c", Symbol: "z"}, ranked[3].Unit)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].FinalScore, ranked[i].FinalScore)
	}
}

func TestRerank_DeterministicUnderShuffle(t *testing.T) {
	scorer := NewWeightedScorer(0.15)
	base := []*FusedCandidate{
		fusedWith(source.UnitID{Path: "src/a.c", Symbol: "f"}, map[source.Kind]float64{source.KindVector: 0.9}),
		fusedWith(source.UnitID{Path: "src/b.c", Symbol: "g"}, map[source.Kind]float64{source.KindVector: 0.9}),
		fusedWith(source.UnitID{Path: "src/c.c", Symbol: "h"}, map[source.Kind]float64{source.KindCallGraph: 0.9}),
		fusedWith(source.UnitID{Path: "src/d.c", Symbol: "i"}, map[source.Kind]float64{source.KindVector: 0.4, source.KindCallGraph: 0.6}),
	}

	reference := Rerank(base, scorer)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]*FusedCandidate, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		ranked := Rerank(shuffled, scorer)
		require.Len(t, ranked, len(reference))
		for i := range reference {
			assert.Equal(t, reference[i].Unit, ranked[i].Unit, "trial %d position %d", trial, i)
		}
	}
}

func TestRerank_DoesNotModifyInputSlice(t *testing.T) {
	scorer := NewWeightedScorer(0.15)
	fused := []*FusedCandidate{
		fusedWith(source.UnitID{Path: "b"}, map[source.Kind]float64{source.KindVector: 0.1}),
		fusedWith(source.UnitID{Path: "a"}, map[source.Kind]float64{source.KindVector: 0.9}),
	}

	_ = Rerank(fused, scorer)
	assert.Equal(t, "b", fused[0].Unit.Path)
}

func TestFusedOrder_GroupSizeThenScore(t *testing.T) {
	fused := []*FusedCandidate{
		fusedWith(source.UnitID{Path: "single-high"}, map[source.Kind]float64{source.KindVector: 0.95}),
		fusedWith(source.UnitID{Path: "double"}, map[source.Kind]float64{source.KindVector: 0.5, source.KindCallGraph: 0.5}),
		fusedWith(source.UnitID{Path: "single-low"}, map[source.Kind]float64{source.KindVector: 0.3}),
	}

	ranked := FusedOrder(fused)
	assert.Equal(t, "double", ranked[0].Unit.Path)
	assert.Equal(t, "single-high", ranked[1].Unit.Path)
	assert.Equal(t, "single-low", ranked[2].Unit.Path)
}

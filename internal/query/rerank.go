package query

import (
	"sort"
)

// Scorer combines a fused candidate's per-source score vector into one
// final score. It is the only place where cross-source score scales are
// reconciled.
type Scorer interface {
	Score(fc *FusedCandidate) float64
}

// DefaultCorroborationBoost is the additive boost per corroborating
// source beyond the first.
const DefaultCorroborationBoost = 0.15

// WeightedScorer averages the present native scores and adds a boost
// per additional corroborating source, so a unit two sources agree on
// outranks a single-source unit with a comparable native score.
type WeightedScorer struct {
	// Weights scale each source slot (source.Kinds() order). Nil means
	// all sources weigh equally.
	Weights []float64

	// CorroborationBoost is added once per present source beyond the
	// first.
	CorroborationBoost float64
}

var _ Scorer = (*WeightedScorer)(nil)

// NewWeightedScorer creates the default scorer.
func NewWeightedScorer(boost float64) *WeightedScorer {
	if boost < 0 {
		boost = DefaultCorroborationBoost
	}
	return &WeightedScorer{CorroborationBoost: boost}
}

// Score computes the weighted mean of present scores plus the
// corroboration boost. Absent slots do not drag the mean down.
func (s *WeightedScorer) Score(fc *FusedCandidate) float64 {
	var sum, weightSum float64
	present := 0

	for slot, score := range fc.Scores {
		if score == nil {
			continue
		}
		w := 1.0
		if slot < len(s.Weights) {
			w = s.Weights[slot]
		}
		sum += *score * w
		weightSum += w
		present++
	}

	if present == 0 || weightSum == 0 {
		return 0
	}

	mean := sum / weightSum
	return mean + float64(present-1)*s.CorroborationBoost
}

// Rerank orders fused candidates by scorer score, descending, and
// writes the final score onto each candidate. Ties are broken by unit
// ID (path, then symbol) so the order is total and reproducible. The
// input slice is not modified.
func Rerank(fused []*FusedCandidate, scorer Scorer) []*FusedCandidate {
	ranked := make([]*FusedCandidate, len(fused))
	copy(ranked, fused)

	for _, fc := range ranked {
		fc.FinalScore = scorer.Score(fc)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].Unit.Less(ranked[j].Unit)
	})

	return ranked
}

// FusedOrder ranks without a scorer, for requests with reranking
// disabled: corroboration count first, then best native score, then
// unit ID. Final scores carry the best native score.
func FusedOrder(fused []*FusedCandidate) []*FusedCandidate {
	ranked := make([]*FusedCandidate, len(fused))
	copy(ranked, fused)

	for _, fc := range ranked {
		fc.FinalScore = fc.BestNativeScore()
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SourceCount() != ranked[j].SourceCount() {
			return ranked[i].SourceCount() > ranked[j].SourceCount()
		}
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].Unit.Less(ranked[j].Unit)
	})

	return ranked
}

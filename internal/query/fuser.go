package query

import (
	"github.com/csight/csight/internal/source"
)

// Fuser merges per-source candidate lists into one deduplicated list
// keyed by unit identity. Fusion is pure bookkeeping: it never invents
// or rescales scores, it only records who said what about which unit.
type Fuser struct{}

// NewFuser creates a fuser.
func NewFuser() *Fuser {
	return &Fuser{}
}

// Fuse groups candidates by unit ID across the outcomes. The output
// order is deterministic for a given outcome set: units appear in the
// order first encountered walking outcomes in kind order and each
// outcome's candidates in retrieval order. A source absent from a
// unit's score vector stays nil; absence is not a zero score.
func (f *Fuser) Fuse(outcomes []RetrievalOutcome) []*FusedCandidate {
	slots := len(source.Kinds())
	byUnit := make(map[source.UnitID]*FusedCandidate)
	var order []*FusedCandidate

	for _, outcome := range outcomes {
		if outcome.Status != StatusOK {
			continue
		}
		slot := outcome.Kind.Index()
		if slot < 0 {
			continue
		}

		for _, c := range outcome.Candidates {
			fc, seen := byUnit[c.Unit]
			if !seen {
				fc = &FusedCandidate{
					Unit:   c.Unit,
					Scores: make([]*float64, slots),
				}
				byUnit[c.Unit] = fc
				order = append(order, fc)
			}

			fc.Candidates = append(fc.Candidates, c)

			// Keep the best score when one source surfaces the same
			// unit more than once.
			if existing := fc.Scores[slot]; existing == nil || c.Score > *existing {
				score := c.Score
				fc.Scores[slot] = &score
			}
		}
	}

	return order
}

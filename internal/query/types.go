// Package query implements the enhanced query engine: concurrent
// retrieval across sources, fusion by unit identity, corroboration
// reranking, and result caching behind a single facade.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/csight/csight/internal/source"
)

// SourceSettings is the per-source slice of a request.
type SourceSettings struct {
	// Enabled controls whether the source participates at all.
	Enabled bool

	// TopK bounds how many candidates the source may return.
	TopK int

	// MinScore drops candidates below this native score (0 = no floor).
	MinScore float64
}

// Request is one query as the engine sees it: raw text, the entities
// extracted from it, and the retrieval configuration in force. Build it
// once and treat it as immutable; Fingerprint depends on every field
// that changes the answer.
type Request struct {
	// Text is the raw query text.
	Text string

	// Functions are function names extracted from the text.
	Functions []string

	// Files are file paths extracted from the text.
	Files []string

	// Keywords are fallback lookup terms.
	Keywords []string

	// Sources maps each source kind to its settings. A kind missing
	// from the map counts as disabled.
	Sources map[source.Kind]SourceSettings

	// Timeout is the shared budget for the whole gather phase.
	Timeout time.Duration

	// FinalTopK bounds the ranked result.
	FinalTopK int

	// Rerank enables corroboration reranking. When false the fused
	// order stands.
	Rerank bool
}

// EnabledKinds returns the enabled source kinds in stable order.
func (r *Request) EnabledKinds() []source.Kind {
	var kinds []source.Kind
	for _, k := range source.Kinds() {
		if s, ok := r.Sources[k]; ok && s.Enabled {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// SourceQuery projects the request into the adapter-facing query view.
func (r *Request) SourceQuery() *source.Query {
	return &source.Query{
		Text:      r.Text,
		Functions: r.Functions,
		Files:     r.Files,
		Keywords:  r.Keywords,
	}
}

// Outcome status values.
const (
	StatusOK       = "ok"
	StatusTimeout  = "timeout"
	StatusError    = "error"
	StatusDisabled = "disabled"
)

// RetrievalOutcome is the result of one source's participation in a
// gather. Every configured source gets exactly one outcome.
type RetrievalOutcome struct {
	// Kind is the source this outcome belongs to.
	Kind source.Kind

	// Status is ok, timeout, error or disabled.
	Status string

	// Candidates are the source's hits. Empty unless Status is ok.
	Candidates []*source.Candidate

	// Err holds the failure for error outcomes.
	Err error

	// Elapsed is how long the source ran.
	Elapsed time.Duration
}

// FusedCandidate is one code unit after fusion: the union of what every
// source said about it.
type FusedCandidate struct {
	// Unit identifies the code unit.
	Unit source.UnitID

	// Scores holds the native score per source slot (source.Kinds()
	// order). A nil entry means the source did not surface this unit,
	// which is different from a zero score.
	Scores []*float64

	// Candidates are the merged per-source hits, in kind order then
	// retrieval order. Provenance (snippet, relation, depth, distance)
	// lives here.
	Candidates []*source.Candidate

	// FinalScore is assigned by reranking.
	FinalScore float64
}

// SourceCount returns how many sources surfaced this unit.
func (f *FusedCandidate) SourceCount() int {
	n := 0
	for _, s := range f.Scores {
		if s != nil {
			n++
		}
	}
	return n
}

// BestNativeScore returns the highest native score across sources, or
// 0 when no slot is set.
func (f *FusedCandidate) BestNativeScore() float64 {
	best := 0.0
	for _, s := range f.Scores {
		if s != nil && *s > best {
			best = *s
		}
	}
	return best
}

// Snippet returns the first non-empty snippet across the merged
// candidates.
func (f *FusedCandidate) Snippet() string {
	for _, c := range f.Candidates {
		if c.Snippet != "" {
			return c.Snippet
		}
	}
	return ""
}

// OutcomeSummary is the per-source status carried on a result.
type OutcomeSummary struct {
	Kind    source.Kind   `json:"kind"`
	Status  string        `json:"status"`
	Hits    int           `json:"hits"`
	Elapsed time.Duration `json:"elapsed"`
}

// RankedResult is the engine's answer context: the final ranked units
// plus enough provenance to explain where each came from.
type RankedResult struct {
	// Candidates are the ranked fused candidates, best first, already
	// truncated to the request's final top K.
	Candidates []*FusedCandidate

	// Outcomes summarizes every configured source's participation.
	Outcomes []OutcomeSummary

	// Confidence is 1.0 minus a penalty per enabled source that did not
	// contribute (timeout, error, or empty).
	Confidence float64

	// Elapsed is the total pipeline time.
	Elapsed time.Duration

	// FromCache marks results served from the result cache.
	FromCache bool
}

// ContextString renders the result as a prompt context window: one
// block per candidate with its location, provenance and snippet.
func (r *RankedResult) ContextString() string {
	if len(r.Candidates) == 0 {
		return "No relevant code context found."
	}

	var b strings.Builder
	for i, fc := range r.Candidates {
		fmt.Fprintf(&b, "[%d] %s", i+1, fc.Unit.String())
		if c := primaryCandidate(fc); c != nil && c.StartLine > 0 {
			fmt.Fprintf(&b, " (lines %d-%d)", c.StartLine, c.EndLine)
		}
		fmt.Fprintf(&b, " score=%.3f sources=%d", fc.FinalScore, fc.SourceCount())
		for _, c := range fc.Candidates {
			if c.Relation != "" {
				fmt.Fprintf(&b, " %s", c.Relation)
				break
			}
		}
		b.WriteString("\n")
		if snippet := fc.Snippet(); snippet != "" {
			b.WriteString(snippet)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func primaryCandidate(fc *FusedCandidate) *source.Candidate {
	for _, c := range fc.Candidates {
		if c.StartLine > 0 {
			return c
		}
	}
	if len(fc.Candidates) > 0 {
		return fc.Candidates[0]
	}
	return nil
}

// Package source defines the retrieval source abstraction and the three
// concrete adapters: vector similarity, call graph, and file
// dependencies. Adapters normalize heterogeneous backends into a common
// candidate shape; they never retry and must honor context deadlines.
package source

import (
	"context"
	"fmt"
)

// Kind identifies a retrieval source.
type Kind string

const (
	KindVector     Kind = "vector"
	KindCallGraph  Kind = "call_graph"
	KindDependency Kind = "dependency"
)

// Kinds returns all source kinds in their stable order. Score vectors
// and tie-breaks rely on this order.
func Kinds() []Kind {
	return []Kind{KindVector, KindCallGraph, KindDependency}
}

// Index returns the slot of k in the Kinds() order, or -1.
func (k Kind) Index() int {
	for i, kind := range Kinds() {
		if kind == k {
			return i
		}
	}
	return -1
}

func (k Kind) String() string { return string(k) }

// UnitID identifies a code unit: a function within a file, or a whole
// file when Symbol is empty. Two candidates with equal UnitID refer to
// the same unit regardless of which source surfaced them.
type UnitID struct {
	Path   string
	Symbol string
}

// Less orders unit IDs lexicographically by path, then symbol.
func (u UnitID) Less(other UnitID) bool {
	if u.Path != other.Path {
		return u.Path < other.Path
	}
	return u.Symbol < other.Symbol
}

func (u UnitID) String() string {
	if u.Symbol == "" {
		return u.Path
	}
	return fmt.Sprintf("%s#%s", u.Path, u.Symbol)
}

// ParseUnitID parses a "path#symbol" identifier.
func ParseUnitID(s string) UnitID {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '#' {
			return UnitID{Path: s[:i], Symbol: s[i+1:]}
		}
	}
	return UnitID{Path: s}
}

// Candidate is one retrieval hit in a source's native scale.
type Candidate struct {
	// Unit identifies the code unit.
	Unit UnitID

	// Kind is the source that produced this candidate.
	Kind Kind

	// Score is the native relevance score. Scales differ per source and
	// are only reconciled during reranking.
	Score float64

	// Snippet is the code or summary text shown in the context window.
	Snippet string

	// StartLine and EndLine locate the unit in its file (0 if unknown).
	StartLine int
	EndLine   int

	// Relation is call-graph provenance: "definition", "caller",
	// "callee", "keyword_match", or dependency direction. Empty for
	// vector hits.
	Relation string

	// Depth is the call-graph distance from the query function.
	Depth int

	// Distance is the raw embedding distance for vector hits.
	Distance float64
}

// Query is the adapter-facing view of a user query: the raw text plus
// the entities the intent analyzer extracted from it.
type Query struct {
	// Text is the raw query text.
	Text string

	// Functions are function names mentioned in the query.
	Functions []string

	// Files are file paths mentioned in the query.
	Files []string

	// Keywords are fallback terms when no entity was extracted.
	Keywords []string
}

// Adapter is a retrieval source. Implementations return at most topK
// candidates in their own best-first order, honor ctx cancellation, and
// never retry internally.
type Adapter interface {
	// Retrieve returns candidates for the query.
	Retrieve(ctx context.Context, q *Query, topK int) ([]*Candidate, error)

	// Kind identifies the source.
	Kind() Kind

	// Available reports whether the backing store is usable.
	Available(ctx context.Context) bool
}

package source

import (
	"context"
	"log/slog"

	qerrors "github.com/csight/csight/internal/errors"
	"github.com/csight/csight/internal/store"
)

// Native scores per relation. The call graph has no intrinsic relevance
// metric, so relations are ranked by how directly they answer the query.
const (
	scoreDefinition   = 1.0
	scoreCaller       = 0.8
	scoreCallee       = 0.8
	scoreKeywordMatch = 0.6
)

// CallGraphAdapter retrieves structurally related functions from the
// call graph: the definition of each query function plus its callers
// and callees. Queries without function entities fall back to keyword
// lookup over function names.
type CallGraphAdapter struct {
	graph    *store.GraphStore
	minScore float64
	logger   *slog.Logger
}

var _ Adapter = (*CallGraphAdapter)(nil)

// NewCallGraphAdapter creates a call graph adapter.
func NewCallGraphAdapter(graph *store.GraphStore, minScore float64, logger *slog.Logger) *CallGraphAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CallGraphAdapter{graph: graph, minScore: minScore, logger: logger}
}

func (a *CallGraphAdapter) Kind() Kind { return KindCallGraph }

// Available reports whether the graph store has function nodes.
func (a *CallGraphAdapter) Available(ctx context.Context) bool {
	if a.graph == nil {
		return false
	}
	stats, err := a.graph.Stats(ctx)
	return err == nil && stats.Functions > 0
}

// Retrieve walks the call graph around the query's function entities.
func (a *CallGraphAdapter) Retrieve(ctx context.Context, q *Query, topK int) ([]*Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	var candidates []*Candidate
	if len(q.Functions) > 0 {
		for _, name := range q.Functions {
			got, err := a.retrieveFunction(ctx, name, topK)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, got...)
			if len(candidates) >= topK {
				break
			}
		}
	} else {
		got, err := a.retrieveByKeywords(ctx, q, topK)
		if err != nil {
			return nil, err
		}
		candidates = got
	}

	candidates = a.filterFloor(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	a.logger.Debug("call graph retrieval complete",
		"functions", len(q.Functions), "candidates", len(candidates), "top_k", topK)
	return candidates, nil
}

// retrieveFunction gathers definition, callers and callees of one
// function, best relation first.
func (a *CallGraphAdapter) retrieveFunction(ctx context.Context, name string, topK int) ([]*Candidate, error) {
	var candidates []*Candidate

	def, err := a.graph.Definition(ctx, name)
	if err != nil {
		return nil, qerrors.SourceFailed(string(KindCallGraph), err)
	}
	if def != nil {
		candidates = append(candidates, functionCandidate(def, "definition", 0, scoreDefinition))
	}

	callers, err := a.graph.Callers(ctx, name, topK)
	if err != nil {
		return nil, qerrors.SourceFailed(string(KindCallGraph), err)
	}
	for _, rel := range callers {
		candidates = append(candidates, functionCandidate(rel.Function, "caller", rel.Depth, scoreCaller))
	}

	callees, err := a.graph.Callees(ctx, name, topK)
	if err != nil {
		return nil, qerrors.SourceFailed(string(KindCallGraph), err)
	}
	for _, rel := range callees {
		candidates = append(candidates, functionCandidate(rel.Function, "callee", rel.Depth, scoreCallee))
	}

	return candidates, nil
}

// retrieveByKeywords matches function names against query keywords when
// no function entity was extracted.
func (a *CallGraphAdapter) retrieveByKeywords(ctx context.Context, q *Query, topK int) ([]*Candidate, error) {
	var candidates []*Candidate
	seen := make(map[UnitID]bool)

	for _, kw := range q.Keywords {
		fns, err := a.graph.FunctionsByKeyword(ctx, kw, topK)
		if err != nil {
			return nil, qerrors.SourceFailed(string(KindCallGraph), err)
		}
		for _, fn := range fns {
			c := functionCandidate(fn, "keyword_match", 0, scoreKeywordMatch)
			if seen[c.Unit] {
				continue
			}
			seen[c.Unit] = true
			candidates = append(candidates, c)
			if len(candidates) >= topK {
				return candidates, nil
			}
		}
	}
	return candidates, nil
}

func (a *CallGraphAdapter) filterFloor(candidates []*Candidate) []*Candidate {
	if a.minScore <= 0 {
		return candidates
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Score >= a.minScore {
			kept = append(kept, c)
		}
	}
	return kept
}

func functionCandidate(fn *store.Function, relation string, depth int, score float64) *Candidate {
	return &Candidate{
		Unit:      UnitID{Path: fn.FilePath, Symbol: fn.Name},
		Kind:      KindCallGraph,
		Score:     score,
		Snippet:   fn.Snippet,
		StartLine: fn.StartLine,
		EndLine:   fn.EndLine,
		Relation:  relation,
		Depth:     depth,
	}
}

package source

import (
	"context"
	"log/slog"

	qerrors "github.com/csight/csight/internal/errors"
	"github.com/csight/csight/internal/store"
)

// Native scores for dependency edges. A file the query file includes is
// usually more relevant than one merely including it.
const (
	scoreIncludes   = 0.7
	scoreIncludedBy = 0.5
)

// DependencyAdapter retrieves file-level dependency context: the
// include edges around the query's file entities, and around the files
// defining its function entities.
type DependencyAdapter struct {
	graph    *store.GraphStore
	minScore float64
	logger   *slog.Logger
}

var _ Adapter = (*DependencyAdapter)(nil)

// NewDependencyAdapter creates a dependency adapter.
func NewDependencyAdapter(graph *store.GraphStore, minScore float64, logger *slog.Logger) *DependencyAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DependencyAdapter{graph: graph, minScore: minScore, logger: logger}
}

func (a *DependencyAdapter) Kind() Kind { return KindDependency }

// Available reports whether the graph store has include edges.
func (a *DependencyAdapter) Available(ctx context.Context) bool {
	if a.graph == nil {
		return false
	}
	stats, err := a.graph.Stats(ctx)
	return err == nil && stats.Includes > 0
}

// Retrieve returns the dependency neighborhood of the query's files.
func (a *DependencyAdapter) Retrieve(ctx context.Context, q *Query, topK int) ([]*Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	paths, err := a.queryFiles(ctx, q)
	if err != nil {
		return nil, err
	}

	var candidates []*Candidate
	seen := make(map[UnitID]bool)
	for _, path := range paths {
		deps, err := a.graph.FileDependencies(ctx, path, topK)
		if err != nil {
			return nil, qerrors.SourceFailed(string(KindDependency), err)
		}
		for _, dep := range deps {
			score := scoreIncludedBy
			if dep.Direction == "includes" {
				score = scoreIncludes
			}
			if a.minScore > 0 && score < a.minScore {
				continue
			}
			unit := UnitID{Path: dep.Path}
			if seen[unit] {
				continue
			}
			seen[unit] = true
			candidates = append(candidates, &Candidate{
				Unit:     unit,
				Kind:     KindDependency,
				Score:    score,
				Relation: dep.Direction,
			})
			if len(candidates) >= topK {
				break
			}
		}
		if len(candidates) >= topK {
			break
		}
	}

	a.logger.Debug("dependency retrieval complete",
		"files", len(paths), "candidates", len(candidates), "top_k", topK)
	return candidates, nil
}

// queryFiles resolves the file paths to expand: explicit file entities
// first, then the defining files of function entities.
func (a *DependencyAdapter) queryFiles(ctx context.Context, q *Query) ([]string, error) {
	paths := make([]string, 0, len(q.Files))
	seen := make(map[string]bool)
	for _, f := range q.Files {
		if !seen[f] {
			seen[f] = true
			paths = append(paths, f)
		}
	}

	for _, fn := range q.Functions {
		files, err := a.graph.FilesOfFunction(ctx, fn)
		if err != nil {
			return nil, qerrors.SourceFailed(string(KindDependency), err)
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				paths = append(paths, f)
			}
		}
	}

	return paths, nil
}

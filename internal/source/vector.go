package source

import (
	"context"
	"log/slog"

	"github.com/csight/csight/internal/embed"
	qerrors "github.com/csight/csight/internal/errors"
	"github.com/csight/csight/internal/store"
)

// VectorAdapter retrieves semantically similar code units by embedding
// the query text and searching the HNSW index.
type VectorAdapter struct {
	embedder embed.Embedder
	vectors  *store.HNSWStore
	minScore float64
	logger   *slog.Logger
}

var _ Adapter = (*VectorAdapter)(nil)

// NewVectorAdapter creates a vector adapter. minScore drops hits below
// that similarity before they reach fusion (0 disables the floor).
func NewVectorAdapter(embedder embed.Embedder, vectors *store.HNSWStore, minScore float64, logger *slog.Logger) *VectorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &VectorAdapter{
		embedder: embedder,
		vectors:  vectors,
		minScore: minScore,
		logger:   logger,
	}
}

func (a *VectorAdapter) Kind() Kind { return KindVector }

// Available reports whether the index holds any vectors.
func (a *VectorAdapter) Available(ctx context.Context) bool {
	return a.vectors != nil && a.vectors.Count() > 0
}

// Retrieve embeds the query text and returns the nearest code units.
func (a *VectorAdapter) Retrieve(ctx context.Context, q *Query, topK int) ([]*Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	vec, err := a.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, qerrors.New(qerrors.ErrCodeEmbeddingFailed, "embed query text", err)
	}

	hits, err := a.vectors.Search(ctx, vec, topK)
	if err != nil {
		return nil, qerrors.SourceFailed(string(KindVector), err)
	}

	candidates := make([]*Candidate, 0, len(hits))
	for _, hit := range hits {
		score := float64(hit.Score)
		if a.minScore > 0 && score < a.minScore {
			continue
		}
		candidates = append(candidates, &Candidate{
			Unit:     ParseUnitID(hit.ID),
			Kind:     KindVector,
			Score:    score,
			Distance: float64(hit.Distance),
		})
	}

	a.logger.Debug("vector retrieval complete",
		"hits", len(hits), "kept", len(candidates), "top_k", topK)
	return candidates, nil
}

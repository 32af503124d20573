package query

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	qerrors "github.com/csight/csight/internal/errors"
)

// MissingSourcePenalty is subtracted from result confidence for each
// enabled source that contributed nothing.
const MissingSourcePenalty = 0.1

// DefaultFinalTopK bounds the ranked result when the request does not.
const DefaultFinalTopK = 5

// Engine is the query engine facade: cache lookup, concurrent gather,
// fusion, reranking, truncation, cache store. Identical concurrent
// misses share one pipeline execution.
type Engine struct {
	coordinator *Coordinator
	fuser       *Fuser
	scorer      Scorer
	cache       *ResultCache
	logger      *slog.Logger
	group       singleflight.Group
}

// NewEngine creates an engine. cache may be nil, in which case every
// request runs the pipeline.
func NewEngine(coordinator *Coordinator, scorer Scorer, cache *ResultCache, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if scorer == nil {
		scorer = NewWeightedScorer(DefaultCorroborationBoost)
	}
	return &Engine{
		coordinator: coordinator,
		fuser:       NewFuser(),
		scorer:      scorer,
		cache:       cache,
		logger:      logger,
	}
}

// AnswerContext answers a request with ranked code context. Per-source
// failures degrade the result; the only terminal error is a request
// with no enabled sources. All sources failing yields an empty result,
// not an error.
func (e *Engine) AnswerContext(ctx context.Context, req *Request) (*RankedResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, qerrors.New(qerrors.ErrCodeQueryEmpty, "query text is empty", nil)
	}
	if len(req.EnabledKinds()) == 0 {
		return nil, qerrors.NoSourcesEnabled()
	}

	fingerprint := req.Fingerprint()
	traceID := uuid.NewString()
	logger := e.logger.With("trace_id", traceID, "fingerprint", fingerprint[:12])

	if e.cache != nil {
		if cached, ok := e.cache.Get(fingerprint); ok {
			logger.Debug("result cache hit")
			hit := *cached
			hit.FromCache = true
			return &hit, nil
		}
	}

	// Concurrent identical misses share one execution; every waiter
	// gets the same result.
	v, err, shared := e.group.Do(fingerprint, func() (any, error) {
		return e.runPipeline(ctx, req, fingerprint, logger), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("pipeline shared with concurrent caller")
	}

	return v.(*RankedResult), nil
}

func (e *Engine) runPipeline(ctx context.Context, req *Request, fingerprint string, logger *slog.Logger) *RankedResult {
	start := time.Now()

	outcomes := e.coordinator.Gather(ctx, req)
	fused := e.fuser.Fuse(outcomes)

	var ranked []*FusedCandidate
	if req.Rerank {
		ranked = Rerank(fused, e.scorer)
	} else {
		ranked = FusedOrder(fused)
	}

	// Truncation happens strictly after ranking.
	finalTopK := req.FinalTopK
	if finalTopK <= 0 {
		finalTopK = DefaultFinalTopK
	}
	if len(ranked) > finalTopK {
		ranked = ranked[:finalTopK]
	}

	result := &RankedResult{
		Candidates: ranked,
		Outcomes:   summarize(outcomes),
		Confidence: confidence(req, outcomes),
		Elapsed:    time.Since(start),
	}

	if e.cache != nil {
		e.cache.Put(fingerprint, result)
	}

	logger.Info("query answered",
		"candidates", len(ranked),
		"confidence", result.Confidence,
		"elapsed", result.Elapsed)
	return result
}

func summarize(outcomes []RetrievalOutcome) []OutcomeSummary {
	summaries := make([]OutcomeSummary, len(outcomes))
	for i, o := range outcomes {
		summaries[i] = OutcomeSummary{
			Kind:    o.Kind,
			Status:  o.Status,
			Hits:    len(o.Candidates),
			Elapsed: o.Elapsed,
		}
	}
	return summaries
}

// confidence starts at 1.0 and loses MissingSourcePenalty per enabled
// source that produced no candidates.
func confidence(req *Request, outcomes []RetrievalOutcome) float64 {
	conf := 1.0
	for _, o := range outcomes {
		if o.Status == StatusDisabled {
			continue
		}
		if o.Status != StatusOK || len(o.Candidates) == 0 {
			conf -= MissingSourcePenalty
		}
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

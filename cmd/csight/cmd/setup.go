package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/csight/csight/internal/config"
	"github.com/csight/csight/internal/embed"
	"github.com/csight/csight/internal/intent"
	"github.com/csight/csight/internal/query"
	"github.com/csight/csight/internal/source"
	"github.com/csight/csight/internal/store"
)

// pipeline bundles everything a query command needs, plus the cleanup
// for the stores it opened.
type pipeline struct {
	root     string
	cfg      *config.Config
	engine   *query.Engine
	graph    *store.GraphStore
	vectors  *store.HNSWStore
	embedder embed.Embedder
}

// openPipeline locates the project, loads config, opens the stores and
// assembles the query engine.
func openPipeline() (*pipeline, error) {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		root, _ = os.Getwd()
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	graph, err := store.NewGraphStore(cfg.GraphDBPath(root))
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}

	vectors, err := store.NewHNSWStore(store.VectorStoreConfig{
		Dimensions: cfg.Embeddings.Dimensions,
	})
	if err != nil {
		_ = graph.Close()
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	// A missing index file just means nothing was indexed yet; the
	// vector source degrades on its own.
	if _, statErr := os.Stat(cfg.VectorIndexPath(root)); statErr == nil {
		if err := vectors.Load(cfg.VectorIndexPath(root)); err != nil {
			slog.Warn("vector index unreadable, continuing without it", "error", err)
		}
	}

	embedder := embed.NewCachedEmbedder(embed.NewOllamaEmbedder(embed.OllamaConfig{
		Host:       cfg.Embeddings.Endpoint,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		Timeout:    cfg.Embeddings.Timeout,
	}), cfg.Embeddings.CacheSize)

	adapters := []source.Adapter{
		source.NewVectorAdapter(embedder, vectors, cfg.Query.Vector.MinScore, nil),
		source.NewCallGraphAdapter(graph, cfg.Query.CallGraph.MinScore, nil),
		source.NewDependencyAdapter(graph, cfg.Query.Dependency.MinScore, nil),
	}

	var cache *query.ResultCache
	if cfg.Cache.Enable {
		cache = query.NewResultCache(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}

	engine := query.NewEngine(
		query.NewCoordinator(adapters, nil),
		query.NewWeightedScorer(cfg.Query.CorroborationBoost),
		cache,
		nil,
	)

	return &pipeline{
		root:     root,
		cfg:      cfg,
		engine:   engine,
		graph:    graph,
		vectors:  vectors,
		embedder: embedder,
	}, nil
}

func (p *pipeline) close() {
	_ = p.graph.Close()
	_ = p.vectors.Close()
	_ = p.embedder.Close()
}

// buildRequest turns question text into an engine request using the
// configured retrieval settings and the analyzed intent.
func buildRequest(cfg *config.Config, text string) *query.Request {
	in := intent.NewAnalyzer().Analyze(text)

	return &query.Request{
		Text:      text,
		Functions: in.Functions,
		Files:     in.Files,
		Keywords:  in.Keywords,
		Sources: map[source.Kind]query.SourceSettings{
			source.KindVector:     sourceSettings(cfg.Query.Vector),
			source.KindCallGraph:  sourceSettings(cfg.Query.CallGraph),
			source.KindDependency: sourceSettings(cfg.Query.Dependency),
		},
		Timeout:   cfg.Query.Timeout,
		FinalTopK: cfg.Query.FinalTopK,
		Rerank:    cfg.Query.Rerank,
	}
}

func sourceSettings(sc config.SourceConfig) query.SourceSettings {
	return query.SourceSettings{
		Enabled:  sc.Enable,
		TopK:     sc.TopK,
		MinScore: sc.MinScore,
	}
}

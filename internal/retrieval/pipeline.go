package retrieval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/embedding"
	"github.com/fiscolab/tuiva/internal/models"
	"github.com/fiscolab/tuiva/internal/vector"
)

// Pipeline orchestrates the three retrieval paths for a single query and
// hands their candidates to the fusion reranker.
//
// Lookup runs first, synchronously: its outcome decides how wide the
// semantic path needs to be. Semantic and thematic then run concurrently.
// A semantic failure aborts the whole query; lookup and thematic cannot
// fail, only come back empty.
type Pipeline struct {
	lookup   *LookupEngine
	semantic *SemanticAdapter
	thematic *ThematicFilterEngine
	fusion   *FusionReranker
	logger   *zap.Logger
}

// NewPipeline wires the retrieval paths over a shared corpus index.
func NewPipeline(
	index *corpus.Index,
	embedder embedding.Embedder,
	articleVecs, rulingVecs vector.Index,
	cfg *config.RetrievalConfig,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		lookup:   NewLookupEngine(index),
		semantic: NewSemanticAdapter(index, embedder, articleVecs, rulingVecs, &cfg.Semantic),
		thematic: NewThematicFilterEngine(index),
		fusion:   NewFusionReranker(index, &cfg.Fusion),
		logger:   logger,
	}
}

// Retrieve runs the full retrieval flow for an analyzed query and returns
// the fused, ranked slate.
func (p *Pipeline) Retrieve(ctx context.Context, query string, analysis *models.QueryAnalysis) (*FusedResults, error) {
	start := time.Now()

	lookupResults := p.lookup.Lookup(analysis)

	// A normativa query carrying explicit citations is a pure lookup: the
	// user named the sources, so the semantic net is narrowed to a
	// supporting role.
	reduced := analysis.Type == models.QueryNormativa && !analysis.Refs.Empty()

	var (
		wg           sync.WaitGroup
		semArticles  []*Result
		semRulings   []*Result
		themArticles []*Result
		themRulings  []*Result
		semErr       error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		semArticles, semRulings, semErr = p.semantic.Search(ctx, query, reduced)
	}()

	themArticles, themRulings = p.thematic.Filter(analysis)

	wg.Wait()
	if semErr != nil {
		return nil, fmt.Errorf("semantic search: %w", semErr)
	}

	fused := p.fusion.Fuse(lookupResults, semArticles, semRulings, themArticles, themRulings, analysis)

	p.logger.Debug("retrieval complete",
		zap.String("query_type", string(analysis.Type)),
		zap.Bool("reduced_semantic", reduced),
		zap.Int("lookup", len(lookupResults)),
		zap.Int("semantic_articles", len(semArticles)),
		zap.Int("semantic_rulings", len(semRulings)),
		zap.Int("thematic_articles", len(themArticles)),
		zap.Int("thematic_rulings", len(themRulings)),
		zap.Int("candidates", fused.TotalCandidates),
		zap.Int("final_articles", len(fused.Articles)),
		zap.Int("final_rulings", len(fused.Rulings)),
		zap.Duration("took", time.Since(start)),
	)

	return fused, nil
}

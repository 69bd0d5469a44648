package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/embedding"
	"github.com/fiscolab/tuiva/internal/vector"
)

// SemanticAdapter runs vector-similarity search for a query against the two
// corpus collections. It performs one embedding computation and then the
// two similarity queries concurrently. No subject-tag or category filters
// are applied here; filtering belongs exclusively to the thematic path, so
// semantic ranking is driven purely by vector proximity.
type SemanticAdapter struct {
	index    *corpus.Index
	embedder embedding.Embedder
	articles vector.Index
	rulings  vector.Index
	cfg      *config.SemanticConfig
}

// NewSemanticAdapter creates an adapter over the given collections.
func NewSemanticAdapter(
	index *corpus.Index,
	embedder embedding.Embedder,
	articles vector.Index,
	rulings vector.Index,
	cfg *config.SemanticConfig,
) *SemanticAdapter {
	return &SemanticAdapter{
		index:    index,
		embedder: embedder,
		articles: articles,
		rulings:  rulings,
		cfg:      cfg,
	}
}

// Search embeds the reformulated query and returns the article and ruling
// candidates by similarity. When reduced is true, both collections are
// queried at the narrowed width because explicit references already anchor
// the answer. Matches whose IDs no longer resolve against the corpus are
// dropped silently (stale collection entries). Embedding or query failures
// propagate to the caller; the semantic path has no deterministic fallback.
func (a *SemanticAdapter) Search(ctx context.Context, query string, reduced bool) (articleHits, rulingHits []*Result, err error) {
	queryVec, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("semantic search embedding failed: %w", err)
	}

	topKArticles := a.cfg.TopKArticles
	topKRulings := a.cfg.TopKRulings
	if reduced {
		topKArticles = a.cfg.ReducedTopK
		topKRulings = a.cfg.ReducedTopK
	}

	var (
		articleMatches []*vector.Result
		rulingMatches  []*vector.Result
		errChan        = make(chan error, 2)
		wg             sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		matches, searchErr := a.articles.Search(ctx, queryVec, topKArticles)
		if searchErr != nil {
			errChan <- fmt.Errorf("article similarity query failed: %w", searchErr)
			return
		}
		articleMatches = matches
	}()
	go func() {
		defer wg.Done()
		matches, searchErr := a.rulings.Search(ctx, queryVec, topKRulings)
		if searchErr != nil {
			errChan <- fmt.Errorf("ruling similarity query failed: %w", searchErr)
			return
		}
		rulingMatches = matches
	}()
	wg.Wait()
	close(errChan)
	for searchErr := range errChan {
		if searchErr != nil {
			return nil, nil, searchErr
		}
	}

	for _, match := range articleMatches {
		art, ok := a.index.ArticleByID(match.ID)
		if !ok {
			continue
		}
		articleHits = append(articleHits, ArticleResult(art, match.Score, SourceSemantic))
	}
	for _, match := range rulingMatches {
		rul, ok := a.index.RulingByID(match.ID)
		if !ok {
			continue
		}
		rulingHits = append(rulingHits, RulingResult(rul, match.Score, SourceSemantic))
	}
	return articleHits, rulingHits, nil
}

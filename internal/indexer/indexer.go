// Package indexer vectorizes the corpus into the article and ruling
// collections at startup.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/embedding"
	"github.com/fiscolab/tuiva/internal/vector"
)

// embedBatchSize bounds one embedding request. Large enough to amortize the
// round trip, small enough to stay inside provider request limits.
const embedBatchSize = 64

// Indexer embeds corpus search text and populates the vector collections.
// The corpus is small and static, so it is re-vectorized on every startup
// rather than persisted; embedding cache hits make warm restarts cheap.
type Indexer struct {
	index    *corpus.Index
	embedder embedding.Embedder
	articles vector.Index
	rulings  vector.Index
	logger   *zap.Logger
}

// New creates an indexer over the given corpus and collections.
func New(index *corpus.Index, embedder embedding.Embedder, articles, rulings vector.Index, logger *zap.Logger) *Indexer {
	return &Indexer{
		index:    index,
		embedder: embedder,
		articles: articles,
		rulings:  rulings,
		logger:   logger,
	}
}

// Run vectorizes both corpora. Entities are embedded by their pre-computed
// search text and stored under their corpus IDs so query hits resolve back
// through the corpus index.
func (idx *Indexer) Run(ctx context.Context) error {
	start := time.Now()

	articleIDs := make([]string, 0, idx.index.NumArticles())
	articleTexts := make([]string, 0, idx.index.NumArticles())
	for _, art := range idx.index.Articles() {
		articleIDs = append(articleIDs, art.ID)
		articleTexts = append(articleTexts, art.Meta.SearchText)
	}
	if err := idx.vectorize(ctx, idx.articles, articleIDs, articleTexts); err != nil {
		return fmt.Errorf("vectorize articles: %w", err)
	}

	rulingIDs := make([]string, 0, idx.index.NumRulings())
	rulingTexts := make([]string, 0, idx.index.NumRulings())
	for _, rul := range idx.index.Rulings() {
		rulingIDs = append(rulingIDs, rul.ID)
		rulingTexts = append(rulingTexts, rul.Meta.SearchText)
	}
	if err := idx.vectorize(ctx, idx.rulings, rulingIDs, rulingTexts); err != nil {
		return fmt.Errorf("vectorize rulings: %w", err)
	}

	idx.logger.Info("corpus vectorized",
		zap.Int("articles", idx.articles.Size()),
		zap.Int("rulings", idx.rulings.Size()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (idx *Indexer) vectorize(ctx context.Context, collection vector.Index, ids []string, texts []string) error {
	for offset := 0; offset < len(ids); offset += embedBatchSize {
		end := offset + embedBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		embeddings, err := idx.embedder.EmbedBatch(ctx, texts[offset:end])
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", offset, err)
		}
		for _, emb := range embeddings {
			vector.Normalize(emb)
		}
		if err := collection.Add(ctx, ids[offset:end], embeddings); err != nil {
			return fmt.Errorf("add batch at %d: %w", offset, err)
		}
		idx.logger.Debug("vectorized batch", zap.Int("done", end), zap.Int("total", len(ids)))
	}
	return nil
}

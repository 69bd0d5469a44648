package retrieval

import (
	"sort"

	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/models"
)

const (
	// multiPathBonus rewards an entity surfaced independently by two
	// strategies: that is itself evidence of relevance and must not be
	// discarded just because one score dominates.
	multiPathBonus = 0.1
	// lookupBonus is the strongest adjustment in the system: an explicitly
	// cited source can never be out-ranked by a generically similar but
	// uncited one.
	lookupBonus = 0.5
	// recencyBonus is a small tie-breaker for rulings from the most recent
	// tracked year.
	recencyBonus = 0.05
	// crossRefBonus rewards a ruling linked to an article that is itself
	// in the candidate set.
	crossRefBonus = 0.1
	// tagBonus is granted per subject tag a ruling shares with the query,
	// cumulative and uncapped.
	tagBonus = 0.02

	// Thematic path scores are scaled down before merging, reflecting tag
	// coverage's lower reliability relative to a direct citation or an
	// embedding match.
	thematicArticleWeight = 0.65
	thematicRulingWeight  = 0.5

	// Article thematic-relevance correction. An article matching every
	// identified theme is very likely the governing provision even if long
	// multi-topic statutory text diluted its vector similarity; an article
	// with zero thematic grounding found only by embedding proximity is a
	// likely false positive.
	fullCoverageBonus    = 0.3
	partialCoverageBonus = 0.1
	noCoveragePenalty    = 0.7
)

// FusionReranker merges the three paths' candidates, applies the bonus
// sequence, and produces the final ranked slate. Deterministic, no I/O,
// never fails. The bonus order is load-bearing: several steps read the
// accumulated state left by earlier ones.
type FusionReranker struct {
	index *corpus.Index
	cfg   *config.FusionConfig
}

// NewFusionReranker creates a reranker over the given index and limits.
func NewFusionReranker(index *corpus.Index, cfg *config.FusionConfig) *FusionReranker {
	return &FusionReranker{index: index, cfg: cfg}
}

// pool is an identity-keyed candidate map that remembers insertion order so
// the final sort can break score ties deterministically.
type pool struct {
	byID  map[string]*Result
	order []*Result
}

func newPool() *pool {
	return &pool{byID: make(map[string]*Result)}
}

// add inserts a candidate, combining scores when the entity is already
// present: the new score is max(existing, incoming) plus the multi-path
// bonus. The source label follows the strictly higher pre-bonus score; on a
// tie the earlier insertion wins, which by the fixed insertion order means
// lookup beats semantic beats metadata_filter.
func (p *pool) add(r *Result) {
	existing, ok := p.byID[r.ID]
	if !ok {
		c := r.clone()
		p.byID[r.ID] = c
		p.order = append(p.order, c)
		return
	}
	if r.Score > existing.Score {
		existing.Source = r.Source
		existing.Score = r.Score
	}
	existing.Score += multiPathBonus
}

// Fuse combines the outputs of the three retrieval paths for one query.
func (f *FusionReranker) Fuse(
	lookupResults []*Result,
	semanticArticles, semanticRulings []*Result,
	thematicArticles, thematicRulings []*Result,
	analysis *models.QueryAnalysis,
) *FusedResults {
	articles := newPool()
	rulings := newPool()
	poolFor := func(r *Result) *pool {
		if r.Kind == KindArticle {
			return articles
		}
		return rulings
	}

	// Step 1: merge. Lookup first, then semantic, then thematic with its
	// scores pre-scaled down.
	for _, r := range lookupResults {
		poolFor(r).add(r)
	}
	for _, r := range semanticArticles {
		articles.add(r)
	}
	for _, r := range semanticRulings {
		rulings.add(r)
	}
	for _, r := range thematicArticles {
		scaled := r.clone()
		scaled.Score *= thematicArticleWeight
		articles.add(scaled)
	}
	for _, r := range thematicRulings {
		scaled := r.clone()
		scaled.Score *= thematicRulingWeight
		rulings.add(scaled)
	}

	// Step 2: direct-citation bonus.
	for _, r := range articles.order {
		if r.Source == SourceLookup {
			r.Score += lookupBonus
		}
	}
	for _, r := range rulings.order {
		if r.Source == SourceLookup {
			r.Score += lookupBonus
		}
	}

	// Step 3: recency bonus for rulings from the most recent tracked year.
	if latest := f.index.LatestRulingYear(); latest > 0 {
		for _, r := range rulings.order {
			if r.Ruling.Year == latest {
				r.Score += recencyBonus
			}
		}
	}

	// Step 4: cross-reference coherence. Rulings linked to any article
	// currently in the candidate set gain a bonus, rewarding internal
	// consistency between the two corpora.
	linked := make(map[string]bool)
	for _, r := range articles.order {
		for _, rul := range f.index.LinkedRulings(r.ID) {
			linked[rul.ID] = true
		}
	}
	for _, r := range rulings.order {
		if linked[r.ID] {
			r.Score += crossRefBonus
		}
	}

	// Step 5: per-tag ruling bonus.
	if len(analysis.Themes) > 0 {
		for _, r := range rulings.order {
			if overlap := r.Ruling.ThemeOverlap(analysis.Themes); overlap > 0 {
				r.Score += tagBonus * float64(overlap)
			}
		}
	}

	// Step 6: article thematic-relevance correction. Below two query tags
	// the signal is too weak to trust. Articles found via direct citation
	// are exempt from the zero-coverage penalty: an explicit citation is
	// trusted unconditionally.
	if n := len(analysis.Themes); n >= 2 {
		for _, r := range articles.order {
			overlap := r.Article.ThemeOverlap(analysis.Themes)
			switch {
			case overlap == n:
				r.Score += fullCoverageBonus
			case 2*overlap >= n:
				r.Score += partialCoverageBonus
			case overlap == 0 && r.Source != SourceLookup:
				r.Score *= noCoveragePenalty
			}
		}
	}

	// Step 7: category-aware shaping. Broad conceptual questions benefit
	// from more statutory breadth and are hurt by narrow case-specific
	// rulings.
	maxArticles := f.cfg.MaxArticles
	maxRulings := f.cfg.MaxRulings
	if analysis.Type == models.QueryGenerica {
		maxArticles++
		if maxRulings > 1 {
			maxRulings--
		}
	}

	// Step 8: threshold, stable sort, cap.
	total := len(articles.order) + len(rulings.order)
	return &FusedResults{
		Articles:        rank(articles.order, f.cfg.MinArticleScore, maxArticles),
		Rulings:         rank(rulings.order, f.cfg.MinRulingScore, maxRulings),
		TotalCandidates: total,
	}
}

// rank filters candidates below minScore, sorts descending by score
// preserving first-insertion order among equals, and truncates to limit.
func rank(candidates []*Result, minScore float64, limit int) []*Result {
	kept := make([]*Result, 0, len(candidates))
	for _, r := range candidates {
		if r.Score >= minScore {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

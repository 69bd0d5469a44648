package retrieval

import (
	"regexp"

	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/models"
)

const (
	lookupScore   = 1.0
	crossRefScore = 0.8
)

var articleNumberPattern = regexp.MustCompile(`(\d+(?:-[a-z]+)?)`)

// LookupEngine resolves explicit citations against the corpus indexes and
// enriches the hits one level through the article/ruling cross-reference
// graph. Purely deterministic, never fails: a citation with no corpus match
// contributes nothing.
type LookupEngine struct {
	index *corpus.Index
}

// NewLookupEngine creates a lookup engine over the given index.
func NewLookupEngine(index *corpus.Index) *LookupEngine {
	return &LookupEngine{index: index}
}

// Lookup resolves every explicit reference in the analysis. Results are
// deduplicated by entity ID as rules proceed, so an entity reached by
// multiple rules is emitted once with the score of the first rule that
// found it.
func (e *LookupEngine) Lookup(analysis *models.QueryAnalysis) []*Result {
	results := make([]*Result, 0)
	seenArticles := make(map[string]bool)
	seenRulings := make(map[string]bool)

	// Old-code citations fan out: one old citation may resolve to several
	// consolidated-code articles.
	for _, oldRef := range analysis.Refs.OldCode {
		for _, art := range e.index.MapOldRef(oldRef) {
			if seenArticles[art.ID] {
				continue
			}
			seenArticles[art.ID] = true
			results = append(results, ArticleResult(art, lookupScore, SourceLookup))
		}
	}

	for _, newRef := range analysis.Refs.NewCode {
		number := articleNumberPattern.FindString(newRef)
		if number == "" {
			continue
		}
		art, ok := e.index.ArticleByNumber(number)
		if !ok || seenArticles[art.ID] {
			continue
		}
		seenArticles[art.ID] = true
		results = append(results, ArticleResult(art, lookupScore, SourceLookup))
	}

	for _, key := range analysis.Refs.Rulings {
		rul, ok := e.index.RulingByKey(key.Number, key.Year)
		if !ok || seenRulings[rul.ID] {
			continue
		}
		seenRulings[rul.ID] = true
		results = append(results, RulingResult(rul, lookupScore, SourceLookup))
	}

	// Enrichment: rulings citing a found article, at a lower score because
	// the user asked for something they relate to, not for them.
	directArticles := make([]string, 0, len(seenArticles))
	for _, r := range results {
		if r.Kind == KindArticle {
			directArticles = append(directArticles, r.ID)
		}
	}
	for _, artID := range directArticles {
		for _, rul := range e.index.LinkedRulings(artID) {
			if seenRulings[rul.ID] {
				continue
			}
			seenRulings[rul.ID] = true
			results = append(results, RulingResult(rul, crossRefScore, SourceLookup))
		}
	}

	// Enrichment: articles cited by a found ruling. Iterates over the
	// result slice being appended to, so articles reached via a ruling that
	// was itself reached via an article are also picked up.
	for i := 0; i < len(results); i++ {
		r := results[i]
		if r.Kind != KindRuling {
			continue
		}
		for _, artID := range r.Ruling.LinkedArticleIDs {
			if seenArticles[artID] {
				continue
			}
			art, ok := e.index.ArticleByID(artID)
			if !ok {
				continue
			}
			seenArticles[artID] = true
			results = append(results, ArticleResult(art, crossRefScore, SourceLookup))
		}
	}

	return results
}

// Package retrieval implements the three candidate-producing paths (exact
// lookup, vector similarity, tag coverage) and the fusion reranker that
// merges their outputs into one final ranked slate.
package retrieval

import "github.com/fiscolab/tuiva/internal/models"

// Kind discriminates the two entity variants a result can carry.
type Kind string

const (
	KindArticle Kind = "article"
	KindRuling  Kind = "ruling"
)

// Source tags which path produced a result.
type Source string

const (
	SourceLookup   Source = "lookup"
	SourceSemantic Source = "semantic"
	SourceThematic Source = "metadata_filter"
)

// Result is one scored candidate. Exactly one of Article or Ruling is set,
// matching Kind; the constructors below are the only way results are built
// so the invariant holds by construction. Results are created fresh per
// request and mutated in place by fusion.
type Result struct {
	ID     string  `json:"id"`
	Kind   Kind    `json:"type"`
	Score  float64 `json:"score"`
	Source Source  `json:"source"`

	Article *models.Article `json:"article,omitempty"`
	Ruling  *models.Ruling  `json:"ruling,omitempty"`
}

// ArticleResult builds an article candidate.
func ArticleResult(art *models.Article, score float64, source Source) *Result {
	return &Result{
		ID:      art.ID,
		Kind:    KindArticle,
		Score:   score,
		Source:  source,
		Article: art,
	}
}

// RulingResult builds a ruling candidate.
func RulingResult(rul *models.Ruling, score float64, source Source) *Result {
	return &Result{
		ID:     rul.ID,
		Kind:   KindRuling,
		Score:  score,
		Source: source,
		Ruling: rul,
	}
}

// clone returns a copy so fusion can mutate scores without aliasing the
// producing path's slice.
func (r *Result) clone() *Result {
	c := *r
	return &c
}

// FusedResults is the final output of fusion: the two ranked, capped lists
// plus the number of distinct candidates considered before thresholding.
type FusedResults struct {
	Articles        []*Result `json:"articles"`
	Rulings         []*Result `json:"rulings"`
	TotalCandidates int       `json:"total_candidates"`
}

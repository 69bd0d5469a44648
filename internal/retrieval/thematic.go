package retrieval

import (
	"sort"

	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/models"
)

// rulingThemeDiscount reflects that thematic tagging of rulings is coarser
// and less reliable than for articles.
const rulingThemeDiscount = 0.7

// maxThematicRulings bounds the noise the thematic path injects into
// fusion. Articles are not truncated here; the fusion threshold and final
// cap handle them.
const maxThematicRulings = 5

// ThematicFilterEngine scores corpus entities by subject-tag coverage:
// shared tags divided by query tags. Pure in-memory computation, never
// fails.
type ThematicFilterEngine struct {
	index *corpus.Index
}

// NewThematicFilterEngine creates a thematic filter over the given index.
func NewThematicFilterEngine(index *corpus.Index) *ThematicFilterEngine {
	return &ThematicFilterEngine{index: index}
}

// Filter returns the article and ruling candidates sharing at least one
// subject tag with the query. A query with no tags yields two empty lists:
// the path only adds value when at least one theme was identified.
func (e *ThematicFilterEngine) Filter(analysis *models.QueryAnalysis) (articles, rulings []*Result) {
	if len(analysis.Themes) == 0 {
		return nil, nil
	}
	queryTags := float64(len(analysis.Themes))

	seen := make(map[string]bool)
	for _, theme := range analysis.Themes {
		for _, art := range e.index.ArticlesByTheme(theme) {
			if seen[art.ID] {
				continue
			}
			seen[art.ID] = true
			score := float64(art.ThemeOverlap(analysis.Themes)) / queryTags
			articles = append(articles, ArticleResult(art, score, SourceThematic))
		}
	}

	candidates := e.index.RulingsByThemes(analysis.Themes)
	for _, rul := range candidates {
		if analysis.Filters.MinYear > 0 && rul.Year < analysis.Filters.MinYear {
			continue
		}
		if len(analysis.Filters.Categories) > 0 && !containsString(analysis.Filters.Categories, rul.Category) {
			continue
		}
		score := float64(rul.ThemeOverlap(analysis.Themes)) / queryTags * rulingThemeDiscount
		rulings = append(rulings, RulingResult(rul, score, SourceThematic))
	}

	sort.SliceStable(rulings, func(i, j int) bool { return rulings[i].Score > rulings[j].Score })
	if len(rulings) > maxThematicRulings {
		rulings = rulings[:maxThematicRulings]
	}
	return articles, rulings
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

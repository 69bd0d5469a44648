package corpus

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fiscolab/tuiva/internal/models"
)

// Index holds every derived lookup table over the two corpora. It is built
// once at startup and never mutated afterwards, so it is safe for unlimited
// concurrent readers without locking.
type Index struct {
	articles []*models.Article
	rulings  []*models.Ruling

	articlesByID     map[string]*models.Article
	articlesByNumber map[string]*models.Article
	articlesByTheme  map[string][]*models.Article

	rulingsByID    map[string]*models.Ruling
	rulingsByKey   map[string]*models.Ruling
	rulingsByTheme map[string][]*models.Ruling

	oldToNew      map[string][]*models.Article
	linkedRulings map[string][]*models.Ruling

	latestRulingYear int
}

var oldRefKeyPattern = regexp.MustCompile(`(?i)^(.+?)\s+art\.\s*(\d+\S*)$`)

// NewIndex builds the full index from the two loaded databases. Mapping
// entries that point at IDs absent from the corpus are dropped silently,
// matching the resolution-miss policy of the lookup path.
func NewIndex(articleDB *ArticleDatabase, rulingDB *RulingDatabase) *Index {
	idx := &Index{
		articles:         articleDB.Articles,
		rulings:          rulingDB.Rulings,
		articlesByID:     make(map[string]*models.Article, len(articleDB.Articles)),
		articlesByNumber: make(map[string]*models.Article, len(articleDB.Articles)),
		articlesByTheme:  make(map[string][]*models.Article),
		rulingsByID:      make(map[string]*models.Ruling, len(rulingDB.Rulings)),
		rulingsByKey:     make(map[string]*models.Ruling, len(rulingDB.Rulings)),
		rulingsByTheme:   make(map[string][]*models.Ruling),
		oldToNew:         make(map[string][]*models.Article),
		linkedRulings:    make(map[string][]*models.Ruling),
	}

	for _, art := range articleDB.Articles {
		idx.articlesByID[art.ID] = art
		idx.articlesByNumber[art.Number] = art
	}
	for _, art := range articleDB.Articles {
		for _, theme := range art.Themes {
			idx.articlesByTheme[theme] = append(idx.articlesByTheme[theme], art)
		}
	}

	for _, rul := range rulingDB.Rulings {
		idx.rulingsByID[rul.ID] = rul
		idx.rulingsByKey[rulingKey(rul.Number, rul.Year)] = rul
		for _, theme := range rul.Themes {
			idx.rulingsByTheme[theme] = append(idx.rulingsByTheme[theme], rul)
		}
		if rul.Year > idx.latestRulingYear {
			idx.latestRulingYear = rul.Year
		}
	}

	for key, targets := range articleDB.OldCodeMap {
		resolved := make([]*models.Article, 0, len(targets))
		for _, t := range targets {
			if art, ok := idx.articlesByID[t.ID]; ok {
				resolved = append(resolved, art)
			}
		}
		if len(resolved) == 0 {
			continue
		}
		idx.oldToNew[normalizeOldRef(key)] = resolved
		// Register spelled-out variants so "art. 10 DPR 633/1972" and
		// "articolo 10 DPR 633/1972" resolve like "DPR 633/1972 art. 10".
		if m := oldRefKeyPattern.FindStringSubmatch(key); m != nil {
			statute := strings.TrimSpace(m[1])
			number := strings.TrimSpace(m[2])
			idx.oldToNew[normalizeOldRef(fmt.Sprintf("art. %s %s", number, statute))] = resolved
			idx.oldToNew[normalizeOldRef(fmt.Sprintf("articolo %s %s", number, statute))] = resolved
		}
	}

	for artID, links := range articleDB.LinkedRulings {
		resolved := make([]*models.Ruling, 0, len(links))
		for _, link := range links {
			if rul, ok := idx.rulingsByID[link.ID]; ok {
				resolved = append(resolved, rul)
			}
		}
		if len(resolved) > 0 {
			idx.linkedRulings[artID] = resolved
		}
	}

	return idx
}

func rulingKey(number, year int) string {
	return fmt.Sprintf("%d_%d", number, year)
}

var spacePattern = regexp.MustCompile(`\s+`)

// normalizeOldRef canonicalizes an old-code citation string: lowercase,
// collapsed whitespace.
func normalizeOldRef(ref string) string {
	return spacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(ref)), " ")
}

// ArticleByID returns the article with the given stable ID.
func (idx *Index) ArticleByID(id string) (*models.Article, bool) {
	art, ok := idx.articlesByID[id]
	return art, ok
}

// ArticleByNumber returns the article with the given article number.
func (idx *Index) ArticleByNumber(number string) (*models.Article, bool) {
	art, ok := idx.articlesByNumber[number]
	return art, ok
}

// RulingByID returns the ruling with the given stable ID.
func (idx *Index) RulingByID(id string) (*models.Ruling, bool) {
	rul, ok := idx.rulingsByID[id]
	return rul, ok
}

// RulingByKey returns the ruling with the given number/year key.
func (idx *Index) RulingByKey(number, year int) (*models.Ruling, bool) {
	rul, ok := idx.rulingsByKey[rulingKey(number, year)]
	return rul, ok
}

// MapOldRef resolves an old-code citation to the consolidated-code articles
// that replaced it. One old citation may map to several new articles.
// An unknown citation yields nil, never an error.
func (idx *Index) MapOldRef(oldRef string) []*models.Article {
	return idx.oldToNew[normalizeOldRef(oldRef)]
}

// ArticlesByTheme returns the articles carrying the given subject tag.
func (idx *Index) ArticlesByTheme(theme string) []*models.Article {
	return idx.articlesByTheme[theme]
}

// RulingsByThemes returns the rulings sharing at least one of the given
// tags, each at most once, in corpus order.
func (idx *Index) RulingsByThemes(themes []string) []*models.Ruling {
	themeSet := make(map[string]bool, len(themes))
	for _, t := range themes {
		themeSet[t] = true
	}
	out := make([]*models.Ruling, 0)
	for _, rul := range idx.rulings {
		for _, t := range rul.Themes {
			if themeSet[t] {
				out = append(out, rul)
				break
			}
		}
	}
	return out
}

// LinkedRulings returns the rulings pre-indexed as citing the given article.
func (idx *Index) LinkedRulings(articleID string) []*models.Ruling {
	return idx.linkedRulings[articleID]
}

// LatestRulingYear returns the most recent publication year present in the
// ruling corpus, used by the fusion recency bonus.
func (idx *Index) LatestRulingYear() int {
	return idx.latestRulingYear
}

// Articles returns the full article corpus in load order.
func (idx *Index) Articles() []*models.Article {
	return idx.articles
}

// Rulings returns the full ruling corpus in load order.
func (idx *Index) Rulings() []*models.Ruling {
	return idx.rulings
}

// NumArticles returns the article count.
func (idx *Index) NumArticles() int { return len(idx.articles) }

// NumRulings returns the ruling count.
func (idx *Index) NumRulings() int { return len(idx.rulings) }

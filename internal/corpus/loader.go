// Package corpus loads the statute and ruling reference data and builds the
// immutable lookup indexes shared by every retrieval path.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fiscolab/tuiva/internal/models"
)

// ThemeEntry is one row of the per-theme article index in the source data.
type ThemeEntry struct {
	Article string `json:"articolo"`
	Title   string `json:"titolo"`
	ID      string `json:"id"`
}

// MappedArticle is one target of an old-code mapping entry.
type MappedArticle struct {
	NewArticle string `json:"nuovo_articolo"`
	NewTitle   string `json:"nuovo_titolo"`
	ID         string `json:"id"`
}

// RulingLink is one row of the article-to-ruling link index.
type RulingLink struct {
	ID      string `json:"id"`
	Number  int    `json:"numero"`
	Year    int    `json:"anno"`
	Subject string `json:"oggetto"`
}

// ArticleDatabase is the on-disk shape of the consolidated-code corpus.
type ArticleDatabase struct {
	Metadata struct {
		Statute     string `json:"norma"`
		Title       string `json:"titolo"`
		NumArticles int    `json:"numero_articoli"`
	} `json:"metadata"`
	Articles      []*models.Article          `json:"articoli"`
	ThematicIndex map[string][]ThemeEntry    `json:"indice_tematico"`
	CrossRefGraph map[string][]string        `json:"grafo_riferimenti_interni"`
	OldCodeMap    map[string][]MappedArticle `json:"mappatura_vecchio_nuovo_codice"`
	LinkedRulings map[string][]RulingLink    `json:"interpelli_collegati"`
}

// RulingDatabase is the on-disk shape of the ruling corpus.
type RulingDatabase struct {
	Metadata struct {
		Description string         `json:"descrizione"`
		Total       int            `json:"totale_interpelli"`
		PerYear     map[string]int `json:"per_anno"`
	} `json:"metadata"`
	Rulings []*models.Ruling `json:"interpelli"`
}

// LoadArticles reads and parses the consolidated-code database at path.
func LoadArticles(path string) (*ArticleDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read article corpus: %w", err)
	}
	var db ArticleDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse article corpus: %w", err)
	}
	return &db, nil
}

// LoadRulings reads and parses the ruling database at path.
func LoadRulings(path string) (*RulingDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruling corpus: %w", err)
	}
	var db RulingDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse ruling corpus: %w", err)
	}
	return &db, nil
}

// Load reads both corpora and builds the index in one step.
func Load(articlesPath, rulingsPath string) (*Index, error) {
	articles, err := LoadArticles(articlesPath)
	if err != nil {
		return nil, err
	}
	rulings, err := LoadRulings(rulingsPath)
	if err != nil {
		return nil, err
	}
	return NewIndex(articles, rulings), nil
}

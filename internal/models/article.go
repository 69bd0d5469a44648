// Package models defines the core data structures for statute articles,
// rulings, and query analysis.
package models

// SectionRef identifies a title or chapter within the consolidated code.
type SectionRef struct {
	Number string `json:"numero"`
	Name   string `json:"nome"`
}

// ArticleStructure locates an article in the title/chapter hierarchy.
type ArticleStructure struct {
	Title   SectionRef `json:"titolo"`
	Chapter SectionRef `json:"capo"`
}

// OldCodeRef is a structured reference to the superseded VAT statute.
type OldCodeRef struct {
	Statute string `json:"norma"`
	Article string `json:"articolo"`
}

// OldCodeRefs carries the free-text and structured references an article
// keeps to the code it replaced.
type OldCodeRefs struct {
	FullText   string       `json:"testo_completo"`
	Structured []OldCodeRef `json:"riferimenti_strutturati"`
}

// Paragraph is one numbered sub-paragraph (comma) of an article.
type Paragraph struct {
	Number int    `json:"numero"`
	Text   string `json:"testo"`
}

// ArticleMeta holds pre-computed retrieval metadata for an article.
type ArticleMeta struct {
	SearchText    string   `json:"search_text"`
	Citation      string   `json:"citazione_formale"`
	ShortCitation string   `json:"citazione_breve"`
	Keywords      []string `json:"parole_chiave"`
	TextLength    int      `json:"lunghezza_caratteri"`
}

// Article is a provision of the consolidated VAT code. Articles are
// read-only reference data loaded once at startup and never mutated.
type Article struct {
	ID           string           `json:"id"`
	Number       string           `json:"articolo"`
	Title        string           `json:"titolo"`
	Statute      string           `json:"norma"`
	Structure    ArticleStructure `json:"struttura"`
	OldCode      OldCodeRefs      `json:"riferimenti_vecchio_codice"`
	FullText     string           `json:"testo_integrale"`
	Paragraphs   []Paragraph      `json:"commi"`
	NumParagraph int              `json:"numero_commi"`
	Themes       []string         `json:"temi"`
	InternalRefs []string         `json:"riferimenti_interni"`
	Meta         ArticleMeta      `json:"metadati_rag"`
}

// HasTheme reports whether the article carries the given subject tag.
func (a *Article) HasTheme(theme string) bool {
	for _, t := range a.Themes {
		if t == theme {
			return true
		}
	}
	return false
}

// ThemeOverlap counts how many of the given tags the article shares.
func (a *Article) ThemeOverlap(themes []string) int {
	n := 0
	for _, t := range themes {
		if a.HasTheme(t) {
			n++
		}
	}
	return n
}

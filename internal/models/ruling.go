package models

// RulingSections holds the optional full-text sections of a ruling.
type RulingSections struct {
	FullSubject      string `json:"oggetto_completo"`
	Question         string `json:"quesito"`
	TaxpayerSolution string `json:"soluzione_contribuente"`
	AgencyOpinion    string `json:"parere_ade"`
}

// RulingRefs lists the statutory references cited by a ruling.
type RulingRefs struct {
	Specific      []string `json:"riferimenti_specifici"`
	CitedArticles []string `json:"articoli_citati"`
}

// RulingMeta holds pre-computed retrieval metadata for a ruling.
type RulingMeta struct {
	SearchText    string `json:"search_text"`
	Citation      string `json:"citazione"`
	ShortCitation string `json:"citazione_breve"`
	HasFullText   bool   `json:"ha_testo_completo"`
	TextLength    int    `json:"lunghezza_caratteri"`
}

// Ruling is a published tax-authority response (interpello) to a taxpayer's
// question. Sequence number + year form its natural external key. Read-only
// reference data, same lifecycle as Article.
type Ruling struct {
	ID               string         `json:"id"`
	Number           int            `json:"numero"`
	Year             int            `json:"anno"`
	Date             string         `json:"data"`
	Category         string         `json:"tag"`
	Subject          string         `json:"oggetto"`
	Holding          string         `json:"massima"`
	PDFLink          string         `json:"link_pdf"`
	Sections         RulingSections `json:"sezioni"`
	FullText         string         `json:"testo_integrale"`
	Refs             RulingRefs     `json:"riferimenti_normativi"`
	Themes           []string       `json:"temi"`
	Meta             RulingMeta     `json:"metadati_rag"`
	LinkedArticleIDs []string       `json:"articoli_tu_iva_collegati"`
}

// HasTheme reports whether the ruling carries the given subject tag.
func (r *Ruling) HasTheme(theme string) bool {
	for _, t := range r.Themes {
		if t == theme {
			return true
		}
	}
	return false
}

// ThemeOverlap counts how many of the given tags the ruling shares.
func (r *Ruling) ThemeOverlap(themes []string) int {
	n := 0
	for _, t := range themes {
		if r.HasTheme(t) {
			n++
		}
	}
	return n
}

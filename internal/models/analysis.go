package models

// QueryType classifies a question by how it should be retrieved.
type QueryType string

const (
	// QueryNormativa cites specific articles or rulings.
	QueryNormativa QueryType = "normativa"
	// QuerySpecifica asks about a single circumscribed VAT regime or institute.
	QuerySpecifica QueryType = "specifica"
	// QueryGenerica asks for a broad overview spanning many provisions.
	QueryGenerica QueryType = "generica"
)

// Themes is the closed subject-tag vocabulary shared by articles and rulings.
// Tags outside this list are dropped during analysis normalization.
var Themes = []string{
	"accertamento",
	"aliquote",
	"base_imponibile",
	"cessione_credito",
	"cessioni_beni",
	"commercio_elettronico",
	"compensazioni",
	"detrazione",
	"dichiarazione",
	"esenzioni",
	"esigibilita",
	"esportazioni",
	"fatturazione",
	"franchigia",
	"gruppo_iva",
	"importazioni",
	"iva_agevolata",
	"iva_edilizia",
	"liquidazione",
	"obblighi_contabili",
	"operazioni_intra",
	"prestazioni_servizi",
	"regime_speciale",
	"registrazione",
	"reverse_charge",
	"rimborsi",
	"rivalsa",
	"sanzioni",
	"soggetti_passivi",
	"split_payment",
	"territorialita",
	"volume_affari",
}

var themeSet = func() map[string]bool {
	m := make(map[string]bool, len(Themes))
	for _, t := range Themes {
		m[t] = true
	}
	return m
}()

// ValidTheme reports whether t belongs to the closed vocabulary.
func ValidTheme(t string) bool {
	return themeSet[t]
}

// RulingKey is a ruling citation by sequence number and year.
type RulingKey struct {
	Number int `json:"numero"`
	Year   int `json:"anno"`
}

// CitationRefs partitions the explicit reference mentions of a query.
type CitationRefs struct {
	OldCode []string    `json:"vecchio_codice"`
	NewCode []string    `json:"tu_iva"`
	Rulings []RulingKey `json:"interpelli"`
}

// Empty reports whether no explicit citation was extracted.
func (c CitationRefs) Empty() bool {
	return len(c.OldCode) == 0 && len(c.NewCode) == 0 && len(c.Rulings) == 0
}

// SuggestedFilters are optional ruling filters proposed by the analyzer.
type SuggestedFilters struct {
	Categories []string `json:"tag,omitempty"`
	MinYear    int      `json:"anno_min,omitempty"`
}

// QueryAnalysis is the structured understanding of a question, produced by
// the analyzer and consumed unchanged by all three retrieval paths.
// Immutable once produced; lifetime is one request.
type QueryAnalysis struct {
	Type       QueryType        `json:"tipo_query"`
	Themes     []string         `json:"temi_probabili"`
	Refs       CitationRefs     `json:"riferimenti_normativi"`
	Rewritten  string           `json:"query_riformulata"`
	Filters    SuggestedFilters `json:"filtri_suggeriti"`
}

// Normalize repairs a malformed analysis in place: an unrecognized
// classification falls back to the broadest category and tags outside the
// closed vocabulary are dropped. A single bad upstream field must never
// abort an otherwise-answerable question.
func (q *QueryAnalysis) Normalize() {
	switch q.Type {
	case QueryNormativa, QuerySpecifica, QueryGenerica:
	default:
		q.Type = QueryGenerica
	}
	if len(q.Themes) > 0 {
		kept := q.Themes[:0]
		for _, t := range q.Themes {
			if ValidTheme(t) {
				kept = append(kept, t)
			}
		}
		q.Themes = kept
	}
}

package corpus

import "github.com/fiscolab/tuiva/internal/models"

// NewTestIndex builds a small in-memory corpus for tests: three articles,
// three rulings, one old-code mapping, and one article-to-ruling link.
func NewTestIndex() *Index {
	articleDB := &ArticleDatabase{
		Articles: []*models.Article{
			{
				ID:     "tu-37",
				Number: "37",
				Title:  "Operazioni esenti",
				Themes: []string{"esenzioni", "iva_edilizia"},
				OldCode: models.OldCodeRefs{
					Structured: []models.OldCodeRef{{Statute: "DPR 633/1972", Article: "10"}},
				},
				FullText: "Sono esenti dall'imposta le operazioni indicate nel presente articolo.",
				Meta: models.ArticleMeta{
					SearchText: "operazioni esenti esenzioni locazioni cessioni immobiliari",
					Citation:   "Art. 37 TU IVA (D.Lgs. 10/2026)",
				},
			},
			{
				ID:       "tu-21",
				Number:   "21",
				Title:    "Fatturazione delle operazioni",
				Themes:   []string{"fatturazione"},
				FullText: "Per ciascuna operazione imponibile il soggetto che effettua la cessione emette fattura.",
				Meta: models.ArticleMeta{
					SearchText: "fatturazione emissione fattura elettronica",
					Citation:   "Art. 21 TU IVA (D.Lgs. 10/2026)",
				},
			},
			{
				ID:       "tu-4",
				Number:   "4",
				Title:    "Cessioni di beni",
				Themes:   []string{"cessioni_beni", "territorialita"},
				FullText: "Costituiscono cessioni di beni gli atti a titolo oneroso.",
				Meta: models.ArticleMeta{
					SearchText: "cessioni di beni trasferimento proprietà",
					Citation:   "Art. 4 TU IVA (D.Lgs. 10/2026)",
				},
			},
		},
		OldCodeMap: map[string][]MappedArticle{
			"DPR 633/1972 art. 10": {{NewArticle: "37", ID: "tu-37"}},
		},
		LinkedRulings: map[string][]RulingLink{
			"tu-37": {{ID: "int-19-2024", Number: 19, Year: 2024}},
		},
	}
	rulingDB := &RulingDatabase{
		Rulings: []*models.Ruling{
			{
				ID:       "int-19-2024",
				Number:   19,
				Year:     2024,
				Date:     "2024-02-01",
				Category: "IVA",
				Subject:  "Esenzione per prestazioni sanitarie",
				Holding:  "Le prestazioni in esame rientrano nel regime di esenzione.",
				Themes:   []string{"esenzioni"},
				Sections: models.RulingSections{AgencyOpinion: "L'Agenzia ritiene applicabile l'esenzione."},
				Meta: models.RulingMeta{
					SearchText: "esenzione prestazioni sanitarie interpello",
					Citation:   "Interpello n. 19/2024",
				},
				LinkedArticleIDs: []string{"tu-37"},
			},
			{
				ID:       "int-7-2025",
				Number:   7,
				Year:     2025,
				Date:     "2025-01-15",
				Category: "IVA",
				Subject:  "Cessione di fabbricato strumentale",
				Holding:  "La cessione è esente salvo opzione per l'imposizione.",
				Themes:   []string{"iva_edilizia", "esenzioni"},
				Meta: models.RulingMeta{
					SearchText: "cessione fabbricato strumentale esenzione opzione",
					Citation:   "Interpello n. 7/2025",
				},
			},
			{
				ID:       "int-3-2024",
				Number:   3,
				Year:     2024,
				Date:     "2024-01-10",
				Category: "INDIRETTE",
				Subject:  "Obblighi di fatturazione elettronica",
				Holding:  "Sussiste l'obbligo di emissione in formato elettronico.",
				Themes:   []string{"fatturazione"},
				Meta: models.RulingMeta{
					SearchText: "fatturazione elettronica obblighi emissione",
					Citation:   "Interpello n. 3/2024",
				},
			},
		},
	}
	return NewIndex(articleDB, rulingDB)
}

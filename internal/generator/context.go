package generator

import (
	"fmt"
	"strings"

	"github.com/fiscolab/tuiva/internal/models"
	"github.com/fiscolab/tuiva/internal/retrieval"
)

// Per-document caps keep the assembled context inside the model window even
// when every retrieved article is a long multi-paragraph provision.
const (
	maxArticleChars = 4000
	maxRulingChars  = 3000
)

// BuildContext renders the fused slate as the document context given to the
// response model. Articles first, then rulings, each with a citation header
// so the model can reference sources precisely.
func BuildContext(results *retrieval.FusedResults) string {
	var sections []string

	if len(results.Articles) > 0 {
		sections = append(sections, "=== ARTICOLI DEL TESTO UNICO IVA (D.Lgs. 10/2026) ===\n")
		for _, r := range results.Articles {
			if r.Article != nil {
				sections = append(sections, formatArticle(r.Article))
			}
		}
	}

	if len(results.Rulings) > 0 {
		sections = append(sections, "\n=== INTERPELLI DELL'AGENZIA DELLE ENTRATE ===\n")
		for _, r := range results.Rulings {
			if r.Ruling != nil {
				sections = append(sections, formatRuling(r.Ruling))
			}
		}
	}

	return strings.Join(sections, "\n")
}

func formatArticle(art *models.Article) string {
	lines := []string{
		fmt.Sprintf("--- %s ---", art.Meta.Citation),
		fmt.Sprintf("Titolo: %s", art.Title),
		fmt.Sprintf("Struttura: Titolo %s (%s) > Capo %s (%s)",
			art.Structure.Title.Number, art.Structure.Title.Name,
			art.Structure.Chapter.Number, art.Structure.Chapter.Name),
		fmt.Sprintf("Temi: %s", strings.Join(art.Themes, ", ")),
	}

	if len(art.OldCode.Structured) > 0 {
		refs := make([]string, len(art.OldCode.Structured))
		for i, ref := range art.OldCode.Structured {
			refs[i] = fmt.Sprintf("%s art. %s", ref.Statute, ref.Article)
		}
		lines = append(lines, fmt.Sprintf("Vecchio codice: %s", strings.Join(refs, ", ")))
	}

	if len(art.InternalRefs) > 0 {
		lines = append(lines, fmt.Sprintf("Riferimenti interni TU IVA: artt. %s", strings.Join(art.InternalRefs, ", ")))
	}

	text := art.FullText
	if len(text) > maxArticleChars {
		text = text[:maxArticleChars] + "\n[...testo troncato...]"
	}
	lines = append(lines, fmt.Sprintf("\nTesto:\n%s", text))

	return strings.Join(lines, "\n") + "\n"
}

func formatRuling(rul *models.Ruling) string {
	lines := []string{
		fmt.Sprintf("--- Interpello n. %d/%d (%s) ---", rul.Number, rul.Year, rul.Date),
		fmt.Sprintf("Tag: %s", rul.Category),
		fmt.Sprintf("Oggetto: %s", rul.Subject),
		fmt.Sprintf("Massima: %s", rul.Holding),
		fmt.Sprintf("Temi: %s", strings.Join(rul.Themes, ", ")),
	}

	if rul.PDFLink != "" {
		lines = append(lines, fmt.Sprintf("PDF: %s", rul.PDFLink))
	}

	// Only the agency's opinion goes into context. The question and the
	// taxpayer's proposed solution add length without adding authority.
	if opinion := rul.Sections.AgencyOpinion; opinion != "" {
		if len(opinion) > maxRulingChars {
			opinion = opinion[:maxRulingChars] + "\n[...parere troncato...]"
		}
		lines = append(lines, fmt.Sprintf("\nParere AdE:\n%s", opinion))
	}

	return strings.Join(lines, "\n") + "\n"
}

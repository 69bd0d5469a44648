package analyzer

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/fiscolab/tuiva/internal/models"
)

// Regex-only citation extraction, used when the model is unreachable. It
// covers the common Italian citation spellings; anything it misses simply
// falls through to semantic retrieval.
var (
	oldCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)art(?:icolo)?\.?\s*(\d+)\s+(?:del\s+)?DPR\s+633(?:/(?:19)?72)?`),
		regexp.MustCompile(`(?i)DPR\s+633(?:/(?:19)?72)?\s*,?\s*art(?:icolo)?\.?\s*(\d+)`),
		regexp.MustCompile(`(?i)D\.?P\.?R\.?\s+633(?:/(?:19)?72)?\s*,?\s*art(?:icolo)?\.?\s*(\d+)`),
	}
	newCodePattern = regexp.MustCompile(`(?i)art(?:icolo)?\.?\s*(\d+)\s+(?:TU|Testo Unico)`)
	rulingPattern  = regexp.MustCompile(`(?i)interpello\s+(?:n\.?\s*)?(\d+)/(\d{4})`)
)

// FallbackAnalysis builds an analysis from the query text alone. A query
// with at least one recognized citation is classified normativa so the
// lookup path still fires; otherwise generica. No tags, no reformulation.
func FallbackAnalysis(query string) *models.QueryAnalysis {
	refs := models.CitationRefs{
		OldCode: extractOldCodeRefs(query),
	}
	for _, m := range newCodePattern.FindAllStringSubmatch(query, -1) {
		refs.NewCode = append(refs.NewCode, "art. "+m[1])
	}
	for _, m := range rulingPattern.FindAllStringSubmatch(query, -1) {
		number, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		refs.Rulings = append(refs.Rulings, models.RulingKey{Number: number, Year: year})
	}

	queryType := models.QueryGenerica
	if !refs.Empty() {
		queryType = models.QueryNormativa
	}
	return &models.QueryAnalysis{
		Type:      queryType,
		Refs:      refs,
		Rewritten: query,
	}
}

// extractOldCodeRefs normalizes every DPR 633 citation spelling to the
// canonical "DPR 633/1972 art. N" form, deduplicated in first-seen order.
func extractOldCodeRefs(text string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, pattern := range oldCodePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			ref := fmt.Sprintf("DPR 633/1972 art. %s", m[1])
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/fiscolab/tuiva/internal/models"
)

// ParseAnalysis turns raw model output into a usable QueryAnalysis. Models
// wrap JSON in markdown fences despite instructions, so fences are stripped
// before decoding. Output that is not JSON at all degrades to a generica
// analysis over the original question rather than failing the request.
// Field-level repairs (invalid type, unknown tags) happen in Normalize.
func ParseAnalysis(raw, query string) *models.QueryAnalysis {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var analysis models.QueryAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return unparsedAnalysis(query)
	}
	if analysis.Rewritten == "" {
		analysis.Rewritten = query
	}
	analysis.Normalize()
	return &analysis
}

// unparsedAnalysis is the degraded result for undecodable model output: no
// citations, no tags, the verbatim question as the semantic query.
func unparsedAnalysis(query string) *models.QueryAnalysis {
	return &models.QueryAnalysis{
		Type:      models.QueryGenerica,
		Rewritten: query,
	}
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/models"
	"github.com/fiscolab/tuiva/internal/retrieval"
	"github.com/fiscolab/tuiva/pkg/utils"
)

const maxQueryLength = 1000

type queryRequest struct {
	Query string `json:"query"`
}

// sourceArticle and sourceRuling are corpus entities annotated with their
// retrieval score, as returned to clients.
type sourceArticle struct {
	*models.Article
	Score  float64          `json:"score"`
	Source retrieval.Source `json:"source"`
}

type sourceRuling struct {
	*models.Ruling
	Score  float64          `json:"score"`
	Source retrieval.Source `json:"source"`
}

type sourcesPayload struct {
	Articles []sourceArticle `json:"articles"`
	Rulings  []sourceRuling  `json:"interpelli"`
}

type timingPayload struct {
	AnalysisMS  int64 `json:"analysis_ms"`
	RetrievalMS int64 `json:"retrieval_ms"`
}

type retrievePayload struct {
	Analysis        *models.QueryAnalysis `json:"query_analysis"`
	Sources         sourcesPayload        `json:"sources"`
	TotalCandidates int                   `json:"total_candidates"`
	Timing          timingPayload         `json:"timing"`
}

func buildSources(results *retrieval.FusedResults) sourcesPayload {
	payload := sourcesPayload{
		Articles: make([]sourceArticle, 0, len(results.Articles)),
		Rulings:  make([]sourceRuling, 0, len(results.Rulings)),
	}
	for _, r := range results.Articles {
		payload.Articles = append(payload.Articles, sourceArticle{Article: r.Article, Score: r.Score, Source: r.Source})
	}
	for _, r := range results.Rulings {
		payload.Rulings = append(payload.Rulings, sourceRuling{Ruling: r.Ruling, Score: r.Score, Source: r.Source})
	}
	return payload
}

// validateQuery extracts and bounds-checks the question. The second return
// is a client-facing error message, empty when valid.
func (s *Server) validateQuery(r *http.Request) (string, string) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "corpo della richiesta non valido"
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "", `il campo "query" è obbligatorio`
	}
	if len(req.Query) > maxQueryLength {
		return "", fmt.Sprintf("la query non può superare i %d caratteri", maxQueryLength)
	}
	return query, ""
}

// handleQuery runs the full pipeline and streams the answer as SSE: one
// metadata event carrying the analysis and sources, then text chunks, then
// a [DONE] sentinel.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientIP(r)) {
		s.respondError(w, http.StatusTooManyRequests, "troppe richieste, riprova tra qualche secondo")
		return
	}
	query, errMsg := s.validateQuery(r)
	if errMsg != "" {
		s.respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	requestID := uuid.New().String()
	logger := s.logger.With(zap.String("request_id", requestID))
	logger.Info("query request", zap.String("query", utils.Truncate(query, 120)))

	ctx := r.Context()
	analysisStart := time.Now()
	analysis := s.analyzer.Analyze(ctx, query)
	analysisTime := time.Since(analysisStart)

	retrievalStart := time.Now()
	results, err := s.pipeline.Retrieve(ctx, analysis.Rewritten, analysis)
	if err != nil {
		logger.Error("retrieval failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "errore interno del server")
		return
	}
	retrievalTime := time.Since(retrievalStart)

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming non supportato")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	metadata, err := json.Marshal(retrievePayload{
		Analysis:        analysis,
		Sources:         buildSources(results),
		TotalCandidates: results.TotalCandidates,
		Timing: timingPayload{
			AnalysisMS:  analysisTime.Milliseconds(),
			RetrievalMS: retrievalTime.Milliseconds(),
		},
	})
	if err != nil {
		logger.Error("metadata marshal failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "errore interno del server")
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", metadata)
	flusher.Flush()

	err = s.generator.Stream(ctx, query, results, func(chunk []byte) error {
		event, merr := json.Marshal(map[string]string{"text": string(chunk)})
		if merr != nil {
			return merr
		}
		if _, werr := fmt.Fprintf(w, "data: %s\n\n", event); werr != nil {
			return werr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are gone; all we can do is log and drop the stream.
		logger.Error("generation stream failed", zap.Error(err))
		return
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
	logger.Debug("query complete",
		zap.Duration("analysis", analysisTime),
		zap.Duration("retrieval", retrievalTime),
	)
}

// handleRetrieve runs analysis and retrieval without generation, returning
// the fused slate as JSON. Useful for debugging ranking and for clients
// that bring their own generation.
func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientIP(r)) {
		s.respondError(w, http.StatusTooManyRequests, "troppe richieste, riprova tra qualche secondo")
		return
	}
	query, errMsg := s.validateQuery(r)
	if errMsg != "" {
		s.respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	ctx := r.Context()
	analysisStart := time.Now()
	analysis := s.analyzer.Analyze(ctx, query)
	analysisTime := time.Since(analysisStart)

	retrievalStart := time.Now()
	results, err := s.pipeline.Retrieve(ctx, analysis.Rewritten, analysis)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "errore interno del server")
		return
	}

	s.respondJSON(w, http.StatusOK, retrievePayload{
		Analysis:        analysis,
		Sources:         buildSources(results),
		TotalCandidates: results.TotalCandidates,
		Timing: timingPayload{
			AnalysisMS:  analysisTime.Milliseconds(),
			RetrievalMS: time.Since(retrievalStart).Milliseconds(),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"articles":           s.index.NumArticles(),
		"rulings":            s.index.NumRulings(),
		"latest_ruling_year": s.index.LatestRulingYear(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/analyzer"
	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/embedding"
	"github.com/fiscolab/tuiva/internal/generator"
	"github.com/fiscolab/tuiva/internal/retrieval"
	"github.com/fiscolab/tuiva/internal/vector"
)

// fakeModel returns a fixed response, streaming it as a single chunk when a
// streaming callback is set.
type fakeModel struct {
	response string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.StreamingFunc != nil {
		if err := opts.StreamingFunc(ctx, []byte(f.response)); err != nil {
			return nil, err
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.response}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.response, nil
}

const analysisJSON = `{
	"tipo_query": "specifica",
	"temi_probabili": ["fatturazione"],
	"query_riformulata": "obblighi di fatturazione elettronica"
}`

func newTestServer(t *testing.T, serverCfg *config.ServerConfig) *Server {
	t.Helper()
	logger := zap.NewNop()
	index := corpus.NewTestIndex()

	embedder := embedding.NewMockEmbedder(4)
	embedder.Fixed = map[string][]float32{
		"obblighi di fatturazione elettronica": {0, 1, 0, 0},
	}

	ctx := context.Background()
	articleVecs, err := vector.NewMemoryIndex(4)
	require.NoError(t, err)
	require.NoError(t, articleVecs.Add(ctx,
		[]string{"tu-37", "tu-21"},
		[][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}))
	rulingVecs, err := vector.NewMemoryIndex(4)
	require.NoError(t, err)
	require.NoError(t, rulingVecs.Add(ctx,
		[]string{"int-3-2024"},
		[][]float32{{0, 1, 0, 0}}))

	cfg := config.Default()
	pipeline := retrieval.NewPipeline(index, embedder, articleVecs, rulingVecs, &cfg.Retrieval, logger)
	an := analyzer.NewWithClient(&fakeModel{response: analysisJSON}, logger)
	gen := generator.NewWithClient(&fakeModel{response: "Risposta sulla fatturazione."}, logger)

	if serverCfg == nil {
		serverCfg = &cfg.Server
	}
	srv := NewServer(an, pipeline, gen, index, serverCfg, logger)
	t.Cleanup(func() { srv.limiter.Close() })
	return srv
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRetrieve(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := postJSON(t, srv.Router(), "/api/v1/retrieve", map[string]string{
		"query": "Quando è obbligatoria la fattura elettronica?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Analysis struct {
			Type string `json:"tipo_query"`
		} `json:"query_analysis"`
		Sources struct {
			Articles []struct {
				ID     string  `json:"id"`
				Score  float64 `json:"score"`
				Source string  `json:"source"`
			} `json:"articles"`
			Rulings []json.RawMessage `json:"interpelli"`
		} `json:"sources"`
		TotalCandidates int `json:"total_candidates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.Equal(t, "specifica", payload.Analysis.Type)
	require.NotEmpty(t, payload.Sources.Articles)
	assert.Equal(t, "tu-21", payload.Sources.Articles[0].ID)
	assert.Greater(t, payload.Sources.Articles[0].Score, 0.0)
	assert.Positive(t, payload.TotalCandidates)
}

func TestHandleQueryStreamsSSE(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := postJSON(t, srv.Router(), "/api/v1/query", map[string]string{
		"query": "Quando è obbligatoria la fattura elettronica?",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	events := strings.Split(strings.TrimSpace(body), "\n\n")
	require.GreaterOrEqual(t, len(events), 3)

	// First event is the metadata frame.
	require.True(t, strings.HasPrefix(events[0], "data: "))
	var meta struct {
		Analysis json.RawMessage `json:"query_analysis"`
		Sources  json.RawMessage `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(events[0], "data: ")), &meta))
	assert.NotEmpty(t, meta.Analysis)
	assert.NotEmpty(t, meta.Sources)

	assert.Contains(t, body, `data: {"text":"Risposta sulla fatturazione."}`)
	assert.Equal(t, "data: [DONE]", events[len(events)-1])
}

func TestHandleQueryValidation(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	rec := postJSON(t, router, "/api/v1/query", map[string]string{"query": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "obbligatorio")

	rec = postJSON(t, router, "/api/v1/query", map[string]string{
		"query": strings.Repeat("a", maxQueryLength+1),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("%d caratteri", maxQueryLength))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader("{non json"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQueryRateLimit(t *testing.T) {
	srv := newTestServer(t, &config.ServerConfig{
		Host:               "localhost",
		Port:               0,
		RateLimitPerMinute: 1,
		RateLimitBurst:     1,
	})
	router := srv.Router()

	first := postJSON(t, router, "/api/v1/retrieve", map[string]string{"query": "prima richiesta"})
	assert.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, router, "/api/v1/retrieve", map[string]string{"query": "seconda richiesta"})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "troppe richieste")
}

func TestHandleHealthAndStatus(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Articles         int `json:"articles"`
		Rulings          int `json:"rulings"`
		LatestRulingYear int `json:"latest_ruling_year"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 3, status.Articles)
	assert.Equal(t, 3, status.Rulings)
	assert.Equal(t, 2025, status.LatestRulingYear)
}

// Package server provides the HTTP API: streaming question answering,
// retrieval-only search, health, and status.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/analyzer"
	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/generator"
	"github.com/fiscolab/tuiva/internal/retrieval"
)

// Server is the HTTP front end over the query pipeline.
type Server struct {
	analyzer  *analyzer.Analyzer
	pipeline  *retrieval.Pipeline
	generator *generator.Generator
	index     *corpus.Index
	config    *config.ServerConfig
	logger    *zap.Logger
	limiter   *ipRateLimiter
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	an *analyzer.Analyzer,
	pipeline *retrieval.Pipeline,
	gen *generator.Generator,
	index *corpus.Index,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		analyzer:  an,
		pipeline:  pipeline,
		generator: gen,
		index:     index,
		config:    cfg,
		logger:    logger,
		limiter:   newIPRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
	}
}

// Router builds the HTTP routing table. Exposed separately from Start so
// tests can drive handlers through httptest.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/retrieve", s.handleRetrieve)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.limiter.Close()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

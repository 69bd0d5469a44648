// Package analyzer classifies an Italian VAT question before retrieval: it
// decides the query category, extracts explicit citations, selects subject
// tags from the closed vocabulary, and rewrites the question for embedding.
// Analysis never fails a request: when the model is unreachable or returns
// garbage, a regex-based extraction takes over.
package analyzer

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/models"
)

// Analyzer turns free-text questions into structured QueryAnalysis values.
type Analyzer struct {
	client llms.Model
	logger *zap.Logger
}

// New creates an analyzer backed by an OpenAI-compatible chat endpoint.
func New(cfg *config.AIConfig, logger *zap.Logger) (*Analyzer, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey()),
		openai.WithModel(cfg.AnalyzerModel),
	}
	if cfg.Host != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Host))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Analyzer{client: client, logger: logger}, nil
}

// NewWithClient creates an analyzer over an existing model client. Used by
// tests to inject a fake.
func NewWithClient(client llms.Model, logger *zap.Logger) *Analyzer {
	return &Analyzer{client: client, logger: logger}
}

// Analyze classifies a question. Classification runs at temperature zero in
// JSON mode for reproducibility. A transport or model failure degrades to
// FallbackAnalysis instead of propagating: a worse answer beats no answer.
func (a *Analyzer) Analyze(ctx context.Context, query string) *models.QueryAnalysis {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(query)},
		},
	}

	response, err := a.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithJSONMode(),
		llms.WithMaxTokens(512),
	)
	if err != nil {
		a.logger.Warn("query analysis failed, using regex fallback", zap.Error(err))
		return FallbackAnalysis(query)
	}
	if len(response.Choices) == 0 {
		a.logger.Warn("query analysis returned no choices, using regex fallback")
		return FallbackAnalysis(query)
	}

	analysis := ParseAnalysis(response.Choices[0].Content, query)
	a.logger.Debug("query analyzed",
		zap.String("type", string(analysis.Type)),
		zap.Strings("themes", analysis.Themes),
		zap.Int("old_code_refs", len(analysis.Refs.OldCode)),
		zap.Int("new_code_refs", len(analysis.Refs.NewCode)),
		zap.Int("ruling_refs", len(analysis.Refs.Rulings)),
	)
	return analysis
}

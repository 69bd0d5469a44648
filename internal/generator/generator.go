// Package generator produces the final grounded answer from a fused
// retrieval slate, streaming or in one shot.
package generator

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/retrieval"
)

const maxResponseTokens = 2048

// Generator wraps the response model behind the two delivery modes the
// server needs: token streaming for the interactive endpoint and a blocking
// variant for the CLI.
type Generator struct {
	client llms.Model
	logger *zap.Logger
}

// New creates a generator backed by an OpenAI-compatible chat endpoint.
func New(cfg *config.AIConfig, logger *zap.Logger) (*Generator, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey()),
		openai.WithModel(cfg.GeneratorModel),
	}
	if cfg.Host != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Host))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, logger: logger}, nil
}

// NewWithClient creates a generator over an existing model client. Used by
// tests to inject a fake.
func NewWithClient(client llms.Model, logger *zap.Logger) *Generator {
	return &Generator{client: client, logger: logger}
}

func buildMessages(query string, results *retrieval.FusedResults) []llms.MessageContent {
	userContent := fmt.Sprintf("CONTESTO:\n\n%s\n\nDOMANDA DELL'UTENTE:\n%s", BuildContext(results), query)
	return []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userContent)},
		},
	}
}

// Stream generates the answer, delivering each token chunk to emit as it
// arrives. Returning an error from emit aborts generation.
func (g *Generator) Stream(ctx context.Context, query string, results *retrieval.FusedResults, emit func(chunk []byte) error) error {
	_, err := g.client.GenerateContent(ctx, buildMessages(query, results),
		llms.WithMaxTokens(maxResponseTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			return emit(chunk)
		}),
	)
	if err != nil {
		return fmt.Errorf("response generation: %w", err)
	}
	return nil
}

// Generate is the blocking variant of Stream: the whole answer at once.
func (g *Generator) Generate(ctx context.Context, query string, results *retrieval.FusedResults) (string, error) {
	response, err := g.client.GenerateContent(ctx, buildMessages(query, results),
		llms.WithMaxTokens(maxResponseTokens),
	)
	if err != nil {
		return "", fmt.Errorf("response generation: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("response generation: model returned no choices")
	}
	return response.Choices[0].Content, nil
}

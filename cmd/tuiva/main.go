// Package main is the Tuiva CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/analyzer"
	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/embedding"
	"github.com/fiscolab/tuiva/internal/generator"
	"github.com/fiscolab/tuiva/internal/indexer"
	"github.com/fiscolab/tuiva/internal/retrieval"
	"github.com/fiscolab/tuiva/internal/server"
	"github.com/fiscolab/tuiva/internal/vector"
	"github.com/fiscolab/tuiva/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tuiva/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Local development keeps the API token in a .env file; absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "retrieve":
		runRetrieve()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("tuiva version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (analysis, ranking, timing)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Analyzer,
		components.Pipeline,
		components.Generator,
		components.Index,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: tuiva ask [flags] <domanda>")
		os.Exit(1)
	}
	query := buildQuery(fs.Args())

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	analysis := components.Analyzer.Analyze(ctx, query)
	results, err := components.Pipeline.Retrieve(ctx, analysis.Rewritten, analysis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
		os.Exit(1)
	}

	err = components.Generator.Stream(ctx, query, results, func(chunk []byte) error {
		_, werr := os.Stdout.Write(chunk)
		return werr
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nGeneration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
}

func runRetrieve() {
	fs := flag.NewFlagSet("retrieve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run retrieval locally)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: tuiva retrieve [flags] <domanda>")
		os.Exit(1)
	}
	query := buildQuery(fs.Args())

	if *serverURL != "" {
		out, err := retrieveViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Retrieve failed: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	analysis := components.Analyzer.Analyze(ctx, query)
	results, err := components.Pipeline.Retrieve(ctx, analysis.Rewritten, analysis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]interface{}{
		"query_analysis":   analysis,
		"articles":         results.Articles,
		"interpelli":       results.Rulings,
		"total_candidates": results.TotalCandidates,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func retrieveViaHTTP(serverURL, query string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/retrieve", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return b, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = load corpus locally)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		os.Stdout.Write(b)
		fmt.Println()
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	index, err := corpus.Load(cfg.Corpus.ArticlesPath, cfg.Corpus.RulingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("articles:           %d\n", index.NumArticles())
	fmt.Printf("rulings:            %d\n", index.NumRulings())
	fmt.Printf("latest_ruling_year: %d\n", index.LatestRulingYear())
}

// Components holds initialized services.
type Components struct {
	Index       *corpus.Index
	Embedder    embedding.Embedder
	ArticleVecs vector.Index
	RulingVecs  vector.Index
	Analyzer    *analyzer.Analyzer
	Generator   *generator.Generator
	Pipeline    *retrieval.Pipeline
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.ArticleVecs != nil {
		_ = c.ArticleVecs.Close()
	}
	if c.RulingVecs != nil {
		_ = c.RulingVecs.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	index, err := corpus.Load(cfg.Corpus.ArticlesPath, cfg.Corpus.RulingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	logger.Info("corpus loaded",
		zap.Int("articles", index.NumArticles()),
		zap.Int("rulings", index.NumRulings()),
	)

	var embedder embedding.Embedder
	if cfg.AI.APIKey() != "none" || cfg.AI.Host != "" {
		embedder, err = embedding.NewOpenAIEmbedder(
			cfg.AI.Host,
			cfg.AI.APIKey(),
			cfg.AI.EmbeddingModel,
			cfg.AI.EmbeddingDimensions,
			cfg.AI.EmbeddingCacheSize,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
	} else {
		logger.Warn("no API key configured, using mock embedder")
		embedder = embedding.NewMockEmbedder(cfg.AI.EmbeddingDimensions)
	}

	articleVecs, err := vector.NewMemoryIndex(cfg.AI.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize article index: %w", err)
	}
	rulingVecs, err := vector.NewMemoryIndex(cfg.AI.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ruling index: %w", err)
	}

	idx := indexer.New(index, embedder, articleVecs, rulingVecs, logger)
	if err := idx.Run(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to vectorize corpus: %w", err)
	}

	an, err := analyzer.New(&cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}
	gen, err := generator.New(&cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	pipeline := retrieval.NewPipeline(index, embedder, articleVecs, rulingVecs, &cfg.Retrieval, logger)

	return &Components{
		Index:       index,
		Embedder:    embedder,
		ArticleVecs: articleVecs,
		RulingVecs:  rulingVecs,
		Analyzer:    an,
		Generator:   gen,
		Pipeline:    pipeline,
	}, nil
}

func printUsage() {
	fmt.Println(`tuiva - Italian VAT law retrieval and question answering

Usage:
  tuiva server [flags]              Start the HTTP server
  tuiva ask [flags] <domanda>       Ask a question, stream the answer
  tuiva retrieve [flags] <domanda>  Run retrieval only, print sources as JSON
  tuiva status [flags]              Show corpus status
  tuiva version                     Show version
  tuiva help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/tuiva/config.yaml)
  --debug            Enable debug logging (analysis, ranking, timing)

Ask Flags:
  --config string    Config file path

Retrieve Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL. Empty (default) runs retrieval locally.

Status Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for local mode.

Examples:
  tuiva server
  tuiva ask "Quale regime IVA si applica alle cessioni di fabbricati abitativi?"
  tuiva retrieve "art. 10 DPR 633/72"
  tuiva retrieve --server http://localhost:8080 "reverse charge edilizia"
  tuiva status`)
}

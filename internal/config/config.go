// Package config provides configuration loading and structs for the tuiva
// engine and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	AI        AIConfig        `yaml:"ai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int    `yaml:"rate_limit_burst"`
}

// CorpusConfig holds the paths of the two reference databases.
type CorpusConfig struct {
	ArticlesPath string `yaml:"articles_path"`
	RulingsPath  string `yaml:"rulings_path"`
}

// AIConfig holds settings for the OpenAI-compatible analyzer, embedding, and
// generation services. The API token is read from the environment variable
// named by APIKeyEnv, never from the config file itself.
type AIConfig struct {
	Host                string `yaml:"host"`
	APIKeyEnv           string `yaml:"api_key_env"`
	AnalyzerModel       string `yaml:"analyzer_model"`
	GeneratorModel      string `yaml:"generator_model"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EmbeddingDimensions int    `yaml:"embedding_dimensions"`
	EmbeddingCacheSize  int    `yaml:"embedding_cache_size"`
}

// APIKey resolves the configured API token from the environment. Returns
// "none" when unset so local services that skip authentication still work.
func (a *AIConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return "none"
	}
	if key := strings.TrimSpace(os.Getenv(a.APIKeyEnv)); key != "" {
		return key
	}
	return "none"
}

// RetrievalConfig groups the tunables of the retrieval pipeline.
type RetrievalConfig struct {
	Semantic SemanticConfig `yaml:"semantic"`
	Fusion   FusionConfig   `yaml:"fusion"`
}

// SemanticConfig holds the requested breadth of the similarity queries.
type SemanticConfig struct {
	TopKArticles int `yaml:"top_k_articles"`
	TopKRulings  int `yaml:"top_k_rulings"`
	// ReducedTopK is used for both collections when explicit references
	// already anchor the answer and semantic breadth would only add noise.
	ReducedTopK int `yaml:"reduced_top_k"`
}

// FusionConfig holds the final thresholds and caps. The article threshold is
// deliberately permissive: generation can discard an irrelevant article but
// cannot cite one it never received. The ruling threshold is much stricter
// because rulings are long and consume generation budget disproportionately.
type FusionConfig struct {
	MaxArticles     int     `yaml:"max_articles"`
	MaxRulings      int     `yaml:"max_rulings"`
	MinArticleScore float64 `yaml:"min_article_score"`
	MinRulingScore  float64 `yaml:"min_ruling_score"`
}

// Load reads and parses the config file at path, expands corpus paths
// relative to the config directory, and applies defaults. Returns an error
// if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.ArticlesPath = expandPath(cfg.Corpus.ArticlesPath, configDir)
	cfg.Corpus.RulingsPath = expandPath(cfg.Corpus.RulingsPath, configDir)
	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerMinute == 0 {
		cfg.Server.RateLimitPerMinute = 10
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 3
	}
	if cfg.Corpus.ArticlesPath == "" {
		cfg.Corpus.ArticlesPath = "./data/testo_unico_iva_database.json"
	}
	if cfg.Corpus.RulingsPath == "" {
		cfg.Corpus.RulingsPath = "./data/interpelli_database.json"
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.AI.AnalyzerModel == "" {
		cfg.AI.AnalyzerModel = "gpt-4o-mini"
	}
	if cfg.AI.GeneratorModel == "" {
		cfg.AI.GeneratorModel = "gpt-4o"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-large"
	}
	if cfg.AI.EmbeddingDimensions == 0 {
		cfg.AI.EmbeddingDimensions = 1024
	}
	if cfg.AI.EmbeddingCacheSize == 0 {
		cfg.AI.EmbeddingCacheSize = 1000
	}
	if cfg.Retrieval.Semantic.TopKArticles == 0 {
		cfg.Retrieval.Semantic.TopKArticles = 8
	}
	if cfg.Retrieval.Semantic.TopKRulings == 0 {
		cfg.Retrieval.Semantic.TopKRulings = 10
	}
	if cfg.Retrieval.Semantic.ReducedTopK == 0 {
		cfg.Retrieval.Semantic.ReducedTopK = 3
	}
	if cfg.Retrieval.Fusion.MaxArticles == 0 {
		cfg.Retrieval.Fusion.MaxArticles = 5
	}
	if cfg.Retrieval.Fusion.MaxRulings == 0 {
		cfg.Retrieval.Fusion.MaxRulings = 2
	}
	if cfg.Retrieval.Fusion.MinArticleScore == 0 {
		cfg.Retrieval.Fusion.MinArticleScore = 0.40
	}
	if cfg.Retrieval.Fusion.MinRulingScore == 0 {
		cfg.Retrieval.Fusion.MinRulingScore = 0.70
	}
}

// Default returns a configuration with every default applied, for callers
// that run without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

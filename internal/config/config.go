// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (GROQ_API_KEY, VECTORDB_PATH, MIGRAG_*)
//  2. Config file (~/.migrag/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Data: raw/processed documentation directories
//   - Vector store: database path, collection name, chunking parameters
//   - Groq: inference model, temperature, token limits
//   - Embedding: provider selection (ollama or any OpenAI-compatible endpoint)
//   - Scraper: politeness settings for the documentation fetcher
//   - Serve: HTTP API address and rate limits
//
// Security: GROQ_API_KEY is read from the environment only. It is never
// written to the config file, never logged, and excluded from String().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default values for the documentation pipeline. Chunking parameters follow
// the sizes that work well for technical documentation: 1000-character chunks
// with 200 characters of overlap to preserve context across boundaries.
const (
	DefaultVectorDBPath   = "./vectordb"
	DefaultCollectionName = "ci_migration_docs"
	DefaultRawDir         = "data/raw"
	DefaultProcessedDir   = "data/processed"
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultTopK           = 4
)

// Embedding provider identifiers used in Config.EmbeddingProvider.
const (
	EmbeddingProviderOllama = "ollama"
	EmbeddingProviderOpenAI = "openai"
)

// ScraperConfig controls the documentation fetcher.
type ScraperConfig struct {
	Parallelism int `mapstructure:"parallelism"`
	DelayMS     int `mapstructure:"delay_ms"`
	TimeoutMS   int `mapstructure:"timeout_ms"`
	MaxDepth    int `mapstructure:"max_depth"`
}

// ServeConfig controls the HTTP API server.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`

	// RateLimit is the per-client request budget per minute. Zero disables
	// rate limiting.
	RateLimit int `mapstructure:"rate_limit"`
}

// Config stores application configuration.
// SECURITY: GroqAPIKey is sensitive and must never be logged.
type Config struct {
	// Data directories
	RawDir       string `mapstructure:"raw_dir"`
	ProcessedDir string `mapstructure:"processed_dir"`

	// Vector store
	VectorDBPath   string `mapstructure:"vectordb_path"`
	CollectionName string `mapstructure:"collection_name"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap"`
	TopK           int    `mapstructure:"top_k"`

	// Groq inference
	GroqAPIKey  string  `mapstructure:"groq_api_key"` // SENSITIVE: env only
	GroqModel   string  `mapstructure:"groq_model"`
	GroqBaseURL string  `mapstructure:"groq_base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// Embedding
	EmbeddingProvider string `mapstructure:"embedding_provider"`
	EmbeddingModel    string `mapstructure:"embedding_model"`
	OllamaHost        string `mapstructure:"ollama_host"`
	EmbeddingBaseURL  string `mapstructure:"embedding_base_url"`
	EmbeddingAPIKey   string `mapstructure:"embedding_api_key"` // SENSITIVE: env only

	// Chat history window (interactive mode)
	MaxHistoryMessages int `mapstructure:"max_history_messages"`

	Scraper ScraperConfig `mapstructure:"scraper"`
	Serve   ServeConfig   `mapstructure:"serve"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".migrag")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	if err := bindEnvVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("raw_dir", DefaultRawDir)
	v.SetDefault("processed_dir", DefaultProcessedDir)

	v.SetDefault("vectordb_path", DefaultVectorDBPath)
	v.SetDefault("collection_name", DefaultCollectionName)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("top_k", DefaultTopK)

	v.SetDefault("groq_model", "llama-3.3-70b-versatile")
	v.SetDefault("groq_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("temperature", 0.2)
	v.SetDefault("max_tokens", 1024)

	v.SetDefault("embedding_provider", EmbeddingProviderOllama)
	v.SetDefault("embedding_model", "nomic-embed-text")
	v.SetDefault("ollama_host", "http://localhost:11434")

	v.SetDefault("max_history_messages", 20)

	v.SetDefault("scraper.parallelism", 2)
	v.SetDefault("scraper.delay_ms", 1000)
	v.SetDefault("scraper.timeout_ms", 30000)
	v.SetDefault("scraper.max_depth", 3)

	v.SetDefault("serve.addr", "127.0.0.1:8087")
	v.SetDefault("serve.rate_limit", 60)
}

// bindEnvVariables binds environment variables explicitly.
// GROQ_API_KEY and VECTORDB_PATH keep their historical unprefixed names;
// everything else uses the MIGRAG_ prefix.
func bindEnvVariables(v *viper.Viper) error {
	bindings := map[string]string{
		"groq_api_key":      "GROQ_API_KEY",
		"vectordb_path":     "VECTORDB_PATH",
		"embedding_api_key": "MIGRAG_EMBEDDING_API_KEY",
		"ollama_host":       "MIGRAG_OLLAMA_HOST",
		"groq_model":        "MIGRAG_GROQ_MODEL",
		"serve.addr":        "MIGRAG_ADDR",
	}
	for key, envVar := range bindings {
		if err := v.BindEnv(key, envVar); err != nil {
			return fmt.Errorf("binding %q to %q: %w", key, envVar, err)
		}
	}
	return nil
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes Validate().
func validConfig() *Config {
	return &Config{
		RawDir:            DefaultRawDir,
		ProcessedDir:      DefaultProcessedDir,
		VectorDBPath:      DefaultVectorDBPath,
		CollectionName:    DefaultCollectionName,
		ChunkSize:         DefaultChunkSize,
		ChunkOverlap:      DefaultChunkOverlap,
		TopK:              DefaultTopK,
		GroqModel:         "llama-3.3-70b-versatile",
		GroqBaseURL:       "https://api.groq.com/openai/v1",
		Temperature:       0.2,
		MaxTokens:         1024,
		EmbeddingProvider: EmbeddingProviderOllama,
		EmbeddingModel:    "nomic-embed-text",
		OllamaHost:        "http://localhost:11434",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfigNil)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty vectordb path",
			mutate:  func(c *Config) { c.VectorDBPath = "  " },
			wantErr: ErrInvalidVectorDBPath,
		},
		{
			name:    "empty collection name",
			mutate:  func(c *Config) { c.CollectionName = "" },
			wantErr: ErrInvalidCollectionName,
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: ErrInvalidChunkSize,
		},
		{
			name:    "chunk size too large",
			mutate:  func(c *Config) { c.ChunkSize = MaxChunkSize + 1 },
			wantErr: ErrInvalidChunkSize,
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.ChunkOverlap = -1 },
			wantErr: ErrInvalidChunkOverlap,
		},
		{
			name:    "overlap equals chunk size",
			mutate:  func(c *Config) { c.ChunkOverlap = c.ChunkSize },
			wantErr: ErrInvalidChunkOverlap,
		},
		{
			name:    "top-k zero",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Temperature = 2.5 },
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "max tokens zero",
			mutate:  func(c *Config) { c.MaxTokens = 0 },
			wantErr: ErrInvalidMaxTokens,
		},
		{
			name:    "unknown embedding provider",
			mutate:  func(c *Config) { c.EmbeddingProvider = "huggingface" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "bad ollama host",
			mutate:  func(c *Config) { c.OllamaHost = "localhost:11434" },
			wantErr: ErrInvalidOllamaHost,
		},
		{
			name: "openai provider without base URL",
			mutate: func(c *Config) {
				c.EmbeddingProvider = EmbeddingProviderOpenAI
				c.EmbeddingBaseURL = ""
			},
			wantErr: ErrInvalidProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidateGroq(t *testing.T) {
	cfg := validConfig()
	assert.ErrorIs(t, cfg.ValidateGroq(), ErrMissingAPIKey)

	cfg.GroqAPIKey = "gsk_test"
	assert.NoError(t, cfg.ValidateGroq())
}

func TestLoad_Defaults(t *testing.T) {
	// Run from a directory with no config file so defaults apply.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultVectorDBPath, cfg.VectorDBPath)
	assert.Equal(t, DefaultCollectionName, cfg.CollectionName)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, cfg.ChunkOverlap)
	assert.Equal(t, EmbeddingProviderOllama, cfg.EmbeddingProvider)
	assert.Equal(t, 2, cfg.Scraper.Parallelism)
	assert.Equal(t, "127.0.0.1:8087", cfg.Serve.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VECTORDB_PATH", "/tmp/custom-vectordb")
	t.Setenv("GROQ_API_KEY", "gsk_from_env")
	t.Setenv("MIGRAG_GROQ_MODEL", "llama-3.1-8b-instant")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom-vectordb", cfg.VectorDBPath)
	assert.Equal(t, "gsk_from_env", cfg.GroqAPIKey)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.GroqModel)
}

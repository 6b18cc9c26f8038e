package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors enable errors.Is() checks at call sites. Wrap with
// fmt.Errorf("%w: details", ErrXxx) when adding context.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates GROQ_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing GROQ_API_KEY")

	// ErrInvalidChunkSize indicates the chunk size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates the overlap is negative or >= chunk size.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidProvider indicates the embedding provider is not supported.
	ErrInvalidProvider = errors.New("invalid embedding provider")

	// ErrInvalidOllamaHost indicates the Ollama host is not a valid URL.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")

	// ErrInvalidVectorDBPath indicates the vector database path is empty.
	ErrInvalidVectorDBPath = errors.New("invalid vector database path")

	// ErrInvalidCollectionName indicates the collection name is empty.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// MaxChunkSize bounds chunk_size; chunks beyond this exceed what embedding
// models handle reliably.
const MaxChunkSize = 8192

// MaxTopK bounds retrieval depth; more context than this degrades answers
// and wastes tokens.
const MaxTopK = 20

// Validate checks configuration consistency. It does not require the Groq
// API key; commands that call the inference API use ValidateGroq.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if strings.TrimSpace(c.VectorDBPath) == "" {
		return fmt.Errorf("%w: vectordb_path must not be empty", ErrInvalidVectorDBPath)
	}
	if strings.TrimSpace(c.CollectionName) == "" {
		return fmt.Errorf("%w: collection_name must not be empty", ErrInvalidCollectionName)
	}

	if c.ChunkSize < 1 || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk_size must be in [1, %d], got %d",
			ErrInvalidChunkSize, MaxChunkSize, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d",
			ErrInvalidChunkOverlap, c.ChunkOverlap)
	}
	if c.TopK < 1 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be in [1, %d], got %d",
			ErrInvalidTopK, MaxTopK, c.TopK)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be in [0, 2], got %g",
			ErrInvalidTemperature, c.Temperature)
	}
	if c.MaxTokens < 1 || c.MaxTokens > 32768 {
		return fmt.Errorf("%w: max_tokens must be in [1, 32768], got %d",
			ErrInvalidMaxTokens, c.MaxTokens)
	}

	switch c.EmbeddingProvider {
	case EmbeddingProviderOllama:
		if err := validateURL(c.OllamaHost); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOllamaHost, err)
		}
	case EmbeddingProviderOpenAI:
		if err := validateURL(c.EmbeddingBaseURL); err != nil {
			return fmt.Errorf("%w: embedding_base_url: %v", ErrInvalidProvider, err)
		}
	default:
		return fmt.Errorf("%w: %q, must be one of: ollama, openai",
			ErrInvalidProvider, c.EmbeddingProvider)
	}

	return nil
}

// ValidateGroq checks that the Groq API key is present. Called by commands
// that invoke the inference API (ask, chat, serve).
func (c *Config) ValidateGroq() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.GroqAPIKey) == "" {
		return fmt.Errorf("%w: set the GROQ_API_KEY environment variable", ErrMissingAPIKey)
	}
	return nil
}

// validateURL checks that s parses as an absolute http(s) URL.
func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s)
	}
	return nil
}

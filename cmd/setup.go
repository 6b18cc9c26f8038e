package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ciforge/migrag/internal/agent"
	"github.com/ciforge/migrag/internal/config"
	"github.com/ciforge/migrag/internal/groq"
	"github.com/ciforge/migrag/internal/knowledge"
	"github.com/ciforge/migrag/internal/log"
)

const catalogFilename = "catalog.db"

// loadConfig loads the validated configuration for every subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStore opens the persistent vector store with the configured
// embedding backend.
func openStore(cfg *config.Config, logger log.Logger) (*knowledge.Store, error) {
	embed, err := knowledge.NewEmbeddingFunc(cfg)
	if err != nil {
		return nil, err
	}
	store, err := knowledge.Open(cfg.VectorDBPath, cfg.CollectionName, embed, logger)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %s: %w", cfg.VectorDBPath, err)
	}
	return store, nil
}

// openCatalog opens the source catalog living next to the vector store.
func openCatalog(cfg *config.Config) (*knowledge.Catalog, error) {
	catalog, err := knowledge.OpenCatalog(filepath.Join(cfg.VectorDBPath, catalogFilename))
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	return catalog, nil
}

// newAgent builds the RAG agent backed by the store and the Groq API.
// The Groq key is validated here, so prepare and search work without one.
func newAgent(cfg *config.Config, store *knowledge.Store, logger log.Logger) (*agent.Agent, error) {
	if err := cfg.ValidateGroq(); err != nil {
		return nil, err
	}

	client := groq.NewClient(groq.ClientConfig{
		BaseURL:     cfg.GroqBaseURL,
		APIKey:      cfg.GroqAPIKey,
		Model:       cfg.GroqModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Logger:      logger,
	})

	return agent.New(store, client, cfg.TopK, logger), nil
}

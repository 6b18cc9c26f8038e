package knowledge

import (
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ciforge/migrag/internal/config"
)

// NewEmbeddingFunc selects the embedding backend from configuration.
//
// The default is a local Ollama instance, which keeps document preparation
// free and offline. Any OpenAI-compatible embeddings endpoint can be used
// instead via the openai provider with embedding_base_url.
func NewEmbeddingFunc(cfg *config.Config) (chromem.EmbeddingFunc, error) {
	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderOllama:
		baseURL := strings.TrimSuffix(cfg.OllamaHost, "/") + "/api"
		return chromem.NewEmbeddingFuncOllama(cfg.EmbeddingModel, baseURL), nil

	case config.EmbeddingProviderOpenAI:
		normalized := true
		return chromem.NewEmbeddingFuncOpenAICompat(
			cfg.EmbeddingBaseURL,
			cfg.EmbeddingAPIKey,
			cfg.EmbeddingModel,
			&normalized,
		), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}
}

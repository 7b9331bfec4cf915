// Package ai provides factory functions for creating AI capability adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/passel/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/passel/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/passel/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/passel/internal/adapters/driven/rerank/cohere"
	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/ratelimit"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the capabilities built for a run.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Reranker         driven.Reranker // nil when no rerank endpoint is configured.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
}

// Init builds the capabilities a pipeline configuration asks for. Each
// external capability gets its own rate limiter shared by all documents.
// An unusable embedding setup is a ConfigurationError for
// embedding.provider that also matches ErrEmbeddingUnavailable.
func Init(cfg domain.PipelineConfig) (*InitResult, error) {
	embedding, err := CreateEmbeddingService(&cfg.Embedding)
	if err != nil {
		return nil, &domain.ConfigurationError{
			Option: "embedding.provider",
			Reason: err.Error(),
			Err:    domain.ErrEmbeddingUnavailable,
		}
	}

	return &InitResult{
		EmbeddingService: embedding,
		Reranker:         CreateReranker(&cfg.Rerank),
	}, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context,
	settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'passel config show' to check settings",
			domain.ErrEmbeddingUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'passel config show' to check settings",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// CreateEmbeddingService creates the embedding service named by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("no embedding settings")
	}
	if !settings.IsConfigured() {
		if settings.Provider.RequiresAPIKey() {
			return nil, fmt.Errorf("%s requires an API key", settings.Provider)
		}
		return nil, fmt.Errorf("unsupported embedding provider: %q", settings.Provider)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderHashing:
		// Local and free, so never rate limited.
		return hashing.NewEmbeddingService(hashing.Config{
			Dimensions: hashing.DimensionsForModel(settings.Model),
		}), nil

	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerSecond > 0 {
		svc = ratelimit.WrapEmbedding(svc, ratelimit.New(ratelimit.Config{
			RequestsPerSecond: settings.RequestsPerSecond,
		}))
	}
	return svc, nil
}

// CreateReranker creates the rerank client named by settings.
// Returns nil if no endpoint is configured.
func CreateReranker(settings *domain.RerankSettings) driven.Reranker {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	var r driven.Reranker = cohere.NewReranker(cohere.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		APIKey:  settings.APIKey,
	})
	if settings.RequestsPerSecond > 0 {
		r = ratelimit.WrapReranker(r, ratelimit.New(ratelimit.Config{
			RequestsPerSecond: settings.RequestsPerSecond,
		}))
	}
	return r
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

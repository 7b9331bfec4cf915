package ratelimit

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.Reranker         = (*Reranker)(nil)
)

// EmbeddingService limits calls to an embedding service. Embed and
// EmbedBatch each take one token.
type EmbeddingService struct {
	driven.EmbeddingService
	limiter *Limiter
}

// WrapEmbedding decorates svc with limiter.
func WrapEmbedding(svc driven.EmbeddingService, limiter *Limiter) *EmbeddingService {
	return &EmbeddingService{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for the limiter and then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := s.EmbeddingService.Embed(ctx, text)
	s.limiter.observe(err)
	return vec, err
}

// EmbedBatch waits for the limiter and then embeds texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	s.limiter.observe(err)
	return vecs, err
}

// Reranker limits calls to an external reranker.
type Reranker struct {
	driven.Reranker
	limiter *Limiter
}

// WrapReranker decorates r with limiter.
func WrapReranker(r driven.Reranker, limiter *Limiter) *Reranker {
	return &Reranker{Reranker: r, limiter: limiter}
}

// Rerank waits for the limiter and then reranks passages.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string,
	topN int) ([]driven.RerankResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	results, err := r.Reranker.Rerank(ctx, query, passages, topN)
	r.limiter.observe(err)
	return results, err
}

package ranking

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/textproc"
)

// Ensure EmbeddingRanker implements the interface.
var _ driven.PassageRanker = (*EmbeddingRanker)(nil)

// EmbeddingRanker scores passages by cosine similarity between the query
// vector and each passage vector. The query vector is computed once per
// ranker, so a ranker should not outlive a run.
type EmbeddingRanker struct {
	encoder driven.EmbeddingService

	mu      sync.Mutex
	queries map[string][]float32
}

// NewEmbeddingRanker creates a ranker backed by encoder.
func NewEmbeddingRanker(encoder driven.EmbeddingService) *EmbeddingRanker {
	return &EmbeddingRanker{
		encoder: encoder,
		queries: make(map[string][]float32),
	}
}

// Method returns the strategy identifier.
func (r *EmbeddingRanker) Method() domain.RankingMethod {
	return domain.RankingEmbeddingSimilarity
}

// Rank embeds the passages in one batch and scores them against the query.
// Candidates carry their vectors for later deduplication.
func (r *EmbeddingRanker) Rank(ctx context.Context, query, documentID string,
	passages []domain.Passage) ([]domain.ScoredCandidate, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	qv, err := r.queryVector(ctx, query)
	if err != nil {
		return nil, rankingError(documentID, fmt.Errorf("embed query: %w", err))
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	vectors, err := r.encoder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, rankingError(documentID, fmt.Errorf("embed passages: %w", err))
	}
	if len(vectors) != len(passages) {
		return nil, rankingError(documentID, fmt.Errorf("embed passages: got %d vectors for %d passages: %w",
			len(vectors), len(passages), domain.ErrMalformedResponse))
	}

	candidates := make([]domain.ScoredCandidate, len(passages))
	for i, p := range passages {
		candidates[i] = domain.ScoredCandidate{
			DocumentID: documentID,
			Passage:    p.Text,
			Position:   p.Position,
			Score:      textproc.Cosine(qv, vectors[i]),
			Embedding:  vectors[i],
		}
	}

	sortCandidates(candidates)
	return candidates, nil
}

// queryVector returns the memoised query embedding. Failures are not cached.
func (r *EmbeddingRanker) queryVector(ctx context.Context, query string) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.queries[query]; ok {
		return v, nil
	}
	v, err := r.encoder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	r.queries[query] = v
	return v, nil
}

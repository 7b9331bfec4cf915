package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
)

// Ensure RerankRanker implements the interface.
var _ driven.PassageRanker = (*RerankRanker)(nil)

// RerankRanker delegates scoring to an external reranking service and uses
// its scores verbatim.
type RerankRanker struct {
	reranker driven.Reranker
}

// NewRerankRanker creates a ranker backed by reranker.
func NewRerankRanker(reranker driven.Reranker) *RerankRanker {
	return &RerankRanker{reranker: reranker}
}

// Method returns the strategy identifier.
func (r *RerankRanker) Method() domain.RankingMethod {
	return domain.RankingExternalRerank
}

// Rank submits every passage. Passages the service leaves out are absent
// from the ranking; an out-of-range or repeated index is a malformed response.
func (r *RerankRanker) Rank(ctx context.Context, query, documentID string,
	passages []domain.Passage) ([]domain.ScoredCandidate, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	results, err := r.reranker.Rerank(ctx, query, texts, len(texts))
	if err != nil {
		return nil, rankingError(documentID, fmt.Errorf("rerank with %s: %w", r.reranker.ModelName(), err))
	}

	seen := make(map[int]bool, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(passages) {
			return nil, rankingError(documentID, fmt.Errorf("rerank index %d out of range [0,%d): %w",
				res.Index, len(passages), domain.ErrMalformedResponse))
		}
		if seen[res.Index] {
			return nil, rankingError(documentID, fmt.Errorf("rerank index %d repeated: %w",
				res.Index, domain.ErrMalformedResponse))
		}
		seen[res.Index] = true
	}

	ordered := make([]driven.RerankResult, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	candidates := make([]domain.ScoredCandidate, len(ordered))
	for i, res := range ordered {
		p := passages[res.Index]
		candidates[i] = domain.ScoredCandidate{
			DocumentID: documentID,
			Passage:    p.Text,
			Position:   p.Position,
			Score:      res.Score,
		}
	}

	sortCandidates(candidates)
	return candidates, nil
}

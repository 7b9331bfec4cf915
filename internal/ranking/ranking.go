// Package ranking scores the passages of one document against a query.
package ranking

import (
	"sort"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
)

// New returns the ranker for method. The embedding method needs encoder,
// the rerank method needs reranker.
func New(method domain.RankingMethod, encoder driven.EmbeddingService,
	reranker driven.Reranker) (driven.PassageRanker, error) {
	switch method {
	case domain.RankingEmbeddingSimilarity:
		if encoder == nil {
			return nil, domain.NewConfigurationError("ranking_method",
				"%s needs an embedding provider", method)
		}
		return NewEmbeddingRanker(encoder), nil
	case domain.RankingExternalRerank:
		if reranker == nil {
			return nil, domain.NewConfigurationError("ranking_method",
				"%s needs a rerank service (set rerank.base_url)", method)
		}
		return NewRerankRanker(reranker), nil
	default:
		return nil, domain.NewConfigurationError("ranking_method",
			"unrecognised value %q (want embedding_similarity or external_rerank)", method)
	}
}

// sortCandidates orders candidates by score, best first, keeping input
// order for ties.
func sortCandidates(candidates []domain.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

func rankingError(documentID string, err error) error {
	return &domain.RankingError{DocumentID: documentID, Err: err}
}

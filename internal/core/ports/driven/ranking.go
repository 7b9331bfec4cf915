package driven

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// PassageRanker is a passage scoring strategy.
type PassageRanker interface {
	// Method returns the strategy identifier.
	Method() domain.RankingMethod

	// Rank scores every passage of one document against the query and
	// returns the full ranking, best first, stable on input order.
	// Capability failures are returned as *domain.RankingError.
	Rank(ctx context.Context, query, documentID string, passages []domain.Passage) ([]domain.ScoredCandidate, error)
}

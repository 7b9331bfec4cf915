package driven

import "github.com/custodia-labs/passel/internal/core/domain"

// DocumentScorer is a lexical document retrieval strategy (BM25, TF-IDF).
// Statistics are fitted over the documents passed to each call, so one
// call sees the whole candidate set.
type DocumentScorer interface {
	// Algorithm returns the strategy identifier.
	Algorithm() domain.RetrievalAlgorithm

	// Score returns one score per text, in input order.
	Score(query string, texts []string) []float64
}

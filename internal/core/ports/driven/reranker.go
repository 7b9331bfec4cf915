package driven

import "context"

// RerankResult is one scored passage returned by a Reranker.
type RerankResult struct {
	// Index is the position of the passage in the submitted list.
	Index int

	// Score is the relevance score assigned by the service.
	Score float64
}

// Reranker scores passages against a query using an external relevance model
// (e.g. Cohere rerank, a cross-encoder server).
type Reranker interface {
	// Rerank returns up to topN results, ordered by the service.
	// Services may return fewer results than passages submitted.
	Rerank(ctx context.Context, query string, passages []string, topN int) ([]RerankResult, error)

	// ModelName returns the model identifier for logging.
	ModelName() string
}

package driven

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// PostProcessor processes document content into passages.
// PostProcessors are chained in a pipeline (segmentation, filtering, preprocessing).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns passages.
	// If the processor creates passages (the segmenter), it receives nil.
	// Otherwise it receives the previous stage's passages and may drop or modify them.
	Process(ctx context.Context, doc *domain.Document, passages []domain.Passage) ([]domain.Passage, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final passages after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Passage, error)
}

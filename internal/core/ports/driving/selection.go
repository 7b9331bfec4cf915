package driving

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// SelectionService selects the passages most relevant to a query.
type SelectionService interface {
	// Select reads the configured document folder and runs the pipeline.
	// Configuration problems are returned as *domain.ConfigurationError
	// before any document is read. Per-document failures never fail the run.
	Select(ctx context.Context, cfg domain.PipelineConfig) (*domain.SelectionResult, error)

	// SelectDocuments runs the pipeline over documents already in memory.
	SelectDocuments(ctx context.Context, cfg domain.PipelineConfig, docs []domain.Document) (*domain.SelectionResult, error)
}

package driven

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// ArtifactSink records the query and final results of a run.
// It is never required for correctness.
type ArtifactSink interface {
	// Write persists the artifact.
	Write(ctx context.Context, artifact domain.Artifact) error

	// Location describes where artifacts go (file path, database).
	Location() string
}

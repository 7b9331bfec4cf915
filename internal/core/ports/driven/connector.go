package driven

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// DocumentSource fetches the raw documents of a folder.
type DocumentSource interface {
	// Fetch returns every readable file directly inside folder, in a
	// stable (lexical) order. A missing folder is an error.
	Fetch(ctx context.Context, folder string) ([]domain.RawDocument, error)
}

// FolderWatcher reports changes to a folder as they happen.
type FolderWatcher interface {
	// Watch listens for changes until ctx is cancelled.
	// The returned channel is closed when watching stops.
	Watch(ctx context.Context, folder string) (<-chan domain.DocumentChange, error)
}

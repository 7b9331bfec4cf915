package driven

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// Normaliser extracts text and metadata from one family of formats.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise transforms a raw document into a document with Content.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}

// TextExtractor supplies document text for any supported format.
// Unsupported formats return an error wrapping domain.ErrUnsupportedType.
type TextExtractor interface {
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}

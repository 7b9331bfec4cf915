// Package plaintext provides the fallback Normaliser for text formats.
package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/normalisers/meta"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/yaml",
		"text/toml",
		"text/x-rst",
		"text/x-go",
		"text/x-python",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw document to a document.
// Invalid UTF-8 sequences are replaced rather than rejected.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := strings.ToValidUTF8(string(raw.Content), "�")

	title := ""
	if raw.Metadata != nil {
		title, _ = raw.Metadata["title"].(string)
	}

	return meta.NewDocument(raw, content, meta.Properties{Title: title}), nil
}

// Package docx provides a Normaliser for Word (.docx) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/normalisers/meta"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the Office Open XML word processing content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const documentPart = "word/document.xml"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts paragraph text, one paragraph per line, and the
// core document properties (title, creator, modified).
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("docx: open archive: %w: %w", domain.ErrInvalidInput, err)
	}

	part, err := meta.ReadFile(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("docx: read %s: %w: %w", documentPart, domain.ErrInvalidInput, err)
	}
	if part == nil {
		return nil, fmt.Errorf("docx: missing %s: %w", documentPart, domain.ErrInvalidInput)
	}

	content, err := meta.ParagraphText(part, "p", "t")
	if err != nil {
		return nil, fmt.Errorf("docx: parse %s: %w: %w", documentPart, domain.ErrInvalidInput, err)
	}

	return meta.NewDocument(raw, content, meta.CoreProperties(reader)), nil
}

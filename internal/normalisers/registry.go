package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/normalisers/docx"
	"github.com/custodia-labs/passel/internal/normalisers/html"
	"github.com/custodia-labs/passel/internal/normalisers/markdown"
	"github.com/custodia-labs/passel/internal/normalisers/pdf"
	"github.com/custodia-labs/passel/internal/normalisers/plaintext"
	"github.com/custodia-labs/passel/internal/normalisers/pptx"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches documents to the highest priority normaliser that
// supports their MIME type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry holding every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pptx.New())
	r.Register(pdf.New())
	return r
}

// Register adds a normaliser for each MIME type it supports. Among
// normalisers of equal priority the first registered wins.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mimeType := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mimeType], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mimeType] = list
	}
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mimeType := range r.byMIME {
		types = append(types, mimeType)
	}
	sort.Strings(types)
	return types
}

// Extract normalises raw with the preferred normaliser for its MIME type.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	list := r.byMIME[raw.MIMEType]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, fmt.Errorf("%s (%s): %w", raw.URI, raw.MIMEType, domain.ErrUnsupportedType)
	}
	return list[0].Normalise(ctx, raw)
}

// Package preprocess fills in the normalised text of each passage.
package preprocess

import (
	"context"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/textproc"
)

// Processor sets Passage.Processed from Passage.Text.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a preprocessing processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "preprocess"
}

// Process returns copies of passages with Processed populated.
// The original Text is left untouched.
func (p *Processor) Process(_ context.Context, _ *domain.Document, passages []domain.Passage) ([]domain.Passage, error) {
	out := make([]domain.Passage, len(passages))
	for i, passage := range passages {
		passage.Processed = textproc.Preprocess(passage.Text)
		out[i] = passage
	}
	return out, nil
}

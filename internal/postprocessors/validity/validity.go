// Package validity rejects passages that look like bibliography or
// citation noise rather than prose.
package validity

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/logger"
)

// Heuristic limits.
const (
	// MaxCitationMarkers is the citation marker count at which a passage is rejected.
	MaxCitationMarkers = 3

	// MaxAuthorPatterns is the "Surname, I." count at which a passage is rejected.
	MaxAuthorPatterns = 3

	// MaxYearTokens is the four-digit year count at which a passage is rejected.
	MaxYearTokens = 3

	// MaxSymbolRatio is the highest tolerated share of symbol runes.
	MaxSymbolRatio = 0.20
)

var (
	citationMarker = regexp.MustCompile(`(?i)\bet al\.|\bpp\.|\bvol\.|\bdoi\b|\bissn\b|\bisbn\b|\bin press\b`)
	authorPattern  = regexp.MustCompile(`\b\p{Lu}[\p{L}'\-]+,\s+\p{Lu}\.`)
	yearToken      = regexp.MustCompile(`\b(1[5-9]\d\d|20\d\d)\b`)
)

// IsValid reports whether text reads as prose. It is pure and total.
func IsValid(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if len(citationMarker.FindAllStringIndex(text, -1)) >= MaxCitationMarkers {
		return false
	}
	if symbolRatio(text) > MaxSymbolRatio {
		return false
	}
	if len(authorPattern.FindAllStringIndex(text, -1)) >= MaxAuthorPatterns {
		return false
	}
	if len(yearToken.FindAllStringIndex(text, -1)) >= MaxYearTokens {
		return false
	}
	return true
}

// symbolRatio is the share of runes that are neither alphanumeric nor
// whitespace, over all runes.
func symbolRatio(text string) float64 {
	var total, symbols int
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}

// Processor drops invalid passages.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a validity filter.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "validity"
}

// Process keeps the passages that pass IsValid, in order.
func (p *Processor) Process(_ context.Context, doc *domain.Document, passages []domain.Passage) ([]domain.Passage, error) {
	kept := make([]domain.Passage, 0, len(passages))
	for _, passage := range passages {
		if IsValid(passage.Text) {
			kept = append(kept, passage)
		}
	}
	if dropped := len(passages) - len(kept); dropped > 0 {
		logger.Debug("validity: dropped %d of %d passages from %s", dropped, len(passages), doc.ID)
	}
	return kept, nil
}

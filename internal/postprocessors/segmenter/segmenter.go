// Package segmenter splits document text into overlapping passages.
package segmenter

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/textproc"
)

// DefaultSemanticThreshold is the consecutive-sentence similarity below
// which the semantic method starts a new passage.
const DefaultSemanticThreshold = 0.5

// Encoder embeds sentences for the semantic method.
// driven.EmbeddingService satisfies it.
type Encoder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Processor splits document content into passages.
// It implements the PostProcessor interface.
type Processor struct {
	method    domain.SplitMethod
	maxLength int
	overlap   int
	threshold float64
	encoder   Encoder
}

// Option configures the segmenter.
type Option func(*Processor)

// WithMethod sets the split method.
func WithMethod(method domain.SplitMethod) Option {
	return func(p *Processor) {
		p.method = method
	}
}

// WithMaxLength sets the window size (tokens, characters or words).
func WithMaxLength(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxLength = n
		}
	}
}

// WithOverlap sets how many units are carried into the next window.
func WithOverlap(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlap = n
		}
	}
}

// WithEncoder sets the sentence encoder used by the semantic method.
func WithEncoder(e Encoder) Option {
	return func(p *Processor) {
		p.encoder = e
	}
}

// WithThreshold overrides DefaultSemanticThreshold.
func WithThreshold(t float64) Option {
	return func(p *Processor) {
		p.threshold = t
	}
}

// New creates a segmenter. An unknown method, an overlap that is not
// smaller than the window, or a semantic method without an encoder is a
// configuration error.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		method:    domain.SplitTokens,
		maxLength: domain.DefaultPassageMaxLength,
		overlap:   domain.DefaultPassageOverlap,
		threshold: DefaultSemanticThreshold,
	}

	for _, opt := range opts {
		opt(p)
	}

	if !p.method.IsValid() {
		return nil, domain.NewConfigurationError("split_method",
			"unrecognised value %q (want tokens, sentences or semantic)", p.method)
	}
	if p.overlap >= p.maxLength {
		return nil, domain.NewConfigurationError("passage_overlap",
			"must be less than passage_max_length (%d), got %d", p.maxLength, p.overlap)
	}
	if p.method.RequiresEmbedding() && p.encoder == nil {
		return nil, domain.NewConfigurationError("split_method",
			"semantic segmentation needs an embedding provider")
	}

	return p, nil
}

// Segment splits text with a one-off segmenter.
func Segment(ctx context.Context, text string, maxLength, overlap int,
	method domain.SplitMethod, encoder Encoder) ([]string, error) {
	p, err := New(WithMethod(method), WithMaxLength(maxLength), WithOverlap(overlap), WithEncoder(encoder))
	if err != nil {
		return nil, err
	}
	return p.Split(ctx, text)
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "segmenter"
}

// Method returns the configured split method.
func (p *Processor) Method() domain.SplitMethod {
	return p.method
}

// Process splits the document content into passages.
// Input passages are ignored; this processor creates them from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Passage) ([]domain.Passage, error) {
	texts, err := p.Split(ctx, doc.Content)
	if err != nil {
		return nil, err
	}

	passages := make([]domain.Passage, 0, len(texts))
	for i, text := range texts {
		passages = append(passages, domain.Passage{
			DocumentID: doc.ID,
			Text:       text,
			Position:   i,
		})
	}
	return passages, nil
}

// Split returns the passage texts of text in document order.
// Empty text yields no passages.
func (p *Processor) Split(ctx context.Context, text string) ([]string, error) {
	switch p.method {
	case domain.SplitTokens:
		return p.splitTokens(text), nil
	case domain.SplitSentences:
		return p.splitSentences(text), nil
	case domain.SplitSemantic:
		return p.splitSemantic(ctx, text)
	default:
		return nil, domain.NewConfigurationError("split_method", "unrecognised value %q", p.method)
	}
}

// splitTokens accumulates whitespace tokens. A window is emitted when the
// next token would push it past maxLength, and the next window starts with
// the last overlap tokens of the emitted one.
func (p *Processor) splitTokens(text string) []string {
	tokens := textproc.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var passages []string
	window := make([]string, 0, min(p.maxLength, len(tokens)))

	for _, tok := range tokens {
		if len(window)+1 > p.maxLength {
			passages = append(passages, strings.Join(window, " "))
			window = carry(window, p.overlap)
		}
		window = append(window, tok)
	}

	return append(passages, strings.Join(window, " "))
}

// splitSentences accumulates sentences while the joined window stays within
// maxLength characters. Carried sentences are dropped from the front until
// the carry and the next sentence fit; a sentence longer than maxLength
// forms a passage of its own.
func (p *Processor) splitSentences(text string) []string {
	sentences := textproc.SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var passages []string
	var window []string

	for _, s := range sentences {
		if len(window) > 0 && joinedLen(window, s) > p.maxLength {
			passages = append(passages, strings.Join(window, " "))
			window = carry(window, p.overlap)
			for len(window) > 0 && joinedLen(window, s) > p.maxLength {
				window = window[1:]
			}
		}
		window = append(window, s)
	}

	return append(passages, strings.Join(window, " "))
}

// splitSemantic starts a new passage when the similarity of two consecutive
// sentences drops below the threshold or the passage would exceed maxLength
// words. There is no overlap in this mode.
func (p *Processor) splitSemantic(ctx context.Context, text string) ([]string, error) {
	sentences := textproc.SplitSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}
	if p.encoder == nil {
		return nil, domain.NewConfigurationError("split_method",
			"semantic segmentation needs an embedding provider")
	}

	vectors, err := p.encoder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("embed sentences: got %d vectors for %d sentences: %w",
			len(vectors), len(sentences), domain.ErrMalformedResponse)
	}

	var passages []string
	var current []string
	words := 0

	for i, s := range sentences {
		n := len(textproc.Tokenize(s))
		if len(current) > 0 &&
			(textproc.Cosine(vectors[i-1], vectors[i]) < p.threshold || words+n > p.maxLength) {
			passages = append(passages, strings.Join(current, " "))
			current = nil
			words = 0
		}
		current = append(current, s)
		words += n
	}

	return append(passages, strings.Join(current, " ")), nil
}

// carry returns a fresh slice holding the last n units of window.
func carry(window []string, n int) []string {
	if n > len(window) {
		n = len(window)
	}
	out := make([]string, n, n+1)
	copy(out, window[len(window)-n:])
	return out
}

// joinedLen is the rune length of window and next joined by single spaces.
func joinedLen(window []string, next string) int {
	n := utf8.RuneCountInString(next)
	for _, s := range window {
		n += utf8.RuneCountInString(s) + 1
	}
	return n
}

// Package dedup suppresses near-duplicate passages from a ranked list.
package dedup

import (
	"context"
	"fmt"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/textproc"
)

// Encoder embeds passages that arrive without a vector.
// driven.EmbeddingService satisfies it.
type Encoder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Deduplicator greedily selects passages whose similarity to every
// already-accepted passage is at most the threshold.
type Deduplicator struct {
	encoder   Encoder
	threshold float64
}

// New creates a deduplicator. encoder may be nil when every candidate
// already carries an embedding.
func New(encoder Encoder, threshold float64) *Deduplicator {
	return &Deduplicator{encoder: encoder, threshold: threshold}
}

// Threshold returns the redundancy threshold.
func (d *Deduplicator) Threshold() float64 {
	return d.threshold
}

// Select walks ranked in order and returns up to topN accepted candidates.
// No two accepted candidates have similarity above the threshold.
// Candidates without an embedding are embedded in one batch first; the
// returned candidates carry their vectors.
func (d *Deduplicator) Select(ctx context.Context, ranked []domain.ScoredCandidate,
	topN int) ([]domain.ScoredCandidate, error) {
	if len(ranked) == 0 || topN <= 0 {
		return nil, nil
	}

	candidates, err := d.withEmbeddings(ctx, ranked)
	if err != nil {
		return nil, err
	}

	accepted := make([]domain.ScoredCandidate, 0, min(topN, len(candidates)))
	for _, c := range candidates {
		if d.redundant(c, accepted) {
			continue
		}
		accepted = append(accepted, c)
		if len(accepted) == topN {
			break
		}
	}
	return accepted, nil
}

func (d *Deduplicator) redundant(c domain.ScoredCandidate, accepted []domain.ScoredCandidate) bool {
	for _, a := range accepted {
		if textproc.Cosine(c.Embedding, a.Embedding) > d.threshold {
			return true
		}
	}
	return false
}

// withEmbeddings returns a copy of ranked in which every candidate has a vector.
func (d *Deduplicator) withEmbeddings(ctx context.Context,
	ranked []domain.ScoredCandidate) ([]domain.ScoredCandidate, error) {
	out := make([]domain.ScoredCandidate, len(ranked))
	copy(out, ranked)

	var missing []int
	var texts []string
	for i, c := range out {
		if len(c.Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, c.Passage)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}
	if d.encoder == nil {
		return nil, fmt.Errorf("deduplicate %d passages: %w", len(missing), domain.ErrEmbeddingUnavailable)
	}

	vectors, err := d.encoder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed passages for deduplication: %w", err)
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embed passages for deduplication: got %d vectors for %d passages: %w",
			len(vectors), len(missing), domain.ErrMalformedResponse)
	}
	for j, i := range missing {
		out[i].Embedding = vectors[j]
	}
	return out, nil
}

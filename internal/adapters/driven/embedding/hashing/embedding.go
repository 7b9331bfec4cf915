// Package hashing provides a deterministic, offline embedding service.
//
// Texts are preprocessed (lowercased, punctuation and English stop words
// removed) and each remaining term is hashed into a signed bucket of a
// fixed-size vector, which is then L2-normalised. Texts sharing vocabulary
// have positive cosine similarity; texts with disjoint vocabulary are
// orthogonal up to hash collisions.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/textproc"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size used when none is configured.
const DefaultDimensions = 256

// ModelPrefix names the model; the dimension count is appended.
const ModelPrefix = "hashing-"

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Dimensions is the vector size (default: 256).
	Dimensions int
}

// EmbeddingService embeds text by feature hashing.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: cfg.Dimensions}
}

// DimensionsForModel parses the dimension count from a model name such as
// "hashing-512". Unknown names yield DefaultDimensions.
func DimensionsForModel(model string) int {
	var dims int
	if _, err := fmt.Sscanf(strings.TrimPrefix(model, ModelPrefix), "%d", &dims); err != nil || dims <= 0 {
		return DefaultDimensions
	}
	return dims
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.vector(text), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = s.vector(text)
	}
	return out, nil
}

func (s *EmbeddingService) vector(text string) []float32 {
	vec := make([]float32, s.dimensions)
	for _, term := range strings.Fields(textproc.Preprocess(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(term))
		sum := h.Sum64()

		bucket := int(sum % uint64(s.dimensions))
		if sum>>63 == 1 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return fmt.Sprintf("%s%d", ModelPrefix, s.dimensions)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/textproc"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, "hashing-256", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestDimensionsForModel(t *testing.T) {
	assert.Equal(t, 512, DimensionsForModel("hashing-512"))
	assert.Equal(t, DefaultDimensions, DimensionsForModel("hashing-256"))
	assert.Equal(t, DefaultDimensions, DimensionsForModel(""))
	assert.Equal(t, DefaultDimensions, DimensionsForModel("hashing-abc"))
	assert.Equal(t, DefaultDimensions, DimensionsForModel("hashing--4"))
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	a, err := svc.Embed(context.Background(), "Green tea contains antioxidants.")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "Green tea contains antioxidants.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_UnitLength(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	vec, err := svc.Embed(context.Background(), "benefits of green tea for health")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbed_IgnoresCaseAndStopWords(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	a, _ := svc.Embed(context.Background(), "The benefits of GREEN tea!")
	b, _ := svc.Embed(context.Background(), "benefits green tea")

	assert.InDelta(t, 1.0, textproc.Cosine(a, b), 1e-6)
}

func TestEmbed_SharedVocabularyIsCloser(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx := context.Background()

	query, _ := svc.Embed(ctx, "green tea antioxidants")
	related, _ := svc.Embed(ctx, "green tea is rich in antioxidants")
	unrelated, _ := svc.Embed(ctx, "quarterly revenue grew in europe")

	assert.Greater(t, textproc.Cosine(query, related), textproc.Cosine(query, unrelated))
}

func TestEmbed_EmptyText(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 8})

	vec, err := svc.Embed(context.Background(), "the of and")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(Config{Dimensions: 64})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})

	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, 64)
	}
	single, _ := svc.Embed(context.Background(), "two")
	assert.Equal(t, single, vecs[1])
}

func TestEmbed_CancelledContext(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EmbedBatch(ctx, []string{"a"})

	assert.ErrorIs(t, err, context.Canceled)
}

package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/passel/internal/core/domain"
)

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"tea.txt":   "Green tea is brewed from unoxidised leaves. Green tea contains catechins and a little caffeine.",
		"coffee.md": "# Coffee\n\nCoffee beans are roasted before brewing. Espresso is a concentrated coffee drink.",
		"blob.bin":  "\x00\x01\x02",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "passel.toml")

	c, err := New(path)
	require.NoError(t, err)
	defer c.Close()

	settings, err := c.Settings(nil)
	require.NoError(t, err)
	assert.Equal(t, path, settings.Path())
}

func TestContainer_Settings(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("top_k_docs", 7))
	c := NewWithStore(store)

	t.Run("stored values", func(t *testing.T) {
		settings, err := c.Settings(nil)
		require.NoError(t, err)

		cfg, err := settings.Get()
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.TopKDocs)
		assert.Equal(t, domain.DefaultTopNPassages, cfg.TopNPassages)
	})

	t.Run("overrides shadow stored values", func(t *testing.T) {
		settings, err := c.Settings(map[string]any{"top_k_docs": 2, "query": "green tea"})
		require.NoError(t, err)

		cfg, err := settings.Get()
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.TopKDocs)
		assert.Equal(t, "green tea", cfg.Query)
	})

	t.Run("saving an overlay leaves the store alone", func(t *testing.T) {
		settings, err := c.Settings(map[string]any{"query": "green tea"})
		require.NoError(t, err)

		cfg, err := settings.Get()
		require.NoError(t, err)
		cfg.TopKDocs = 9
		require.NoError(t, settings.Save(cfg))

		assert.Equal(t, 7, store.GetInt("top_k_docs"))
	})
}

func TestContainer_Selector(t *testing.T) {
	c := NewWithStore(memory.NewConfigStore())
	defer c.Close()

	cfg := domain.DefaultPipelineConfig()
	cfg.DocumentFolderPath = writeCorpus(t)
	cfg.Query = "green tea caffeine"

	selector, release, err := c.Selector(cfg)
	require.NoError(t, err)
	defer release()

	result, err := selector.Select(context.Background(), cfg)
	require.NoError(t, err)

	require.NotEmpty(t, result.Candidates)
	assert.Equal(t, 2, result.Stats.DocumentsRead)
	assert.LessOrEqual(t, len(result.Candidates), cfg.OutputBudget())

	var fromTea bool
	for _, cand := range result.Candidates {
		if cand.DocumentID == "tea.txt" {
			fromTea = true
		}
	}
	assert.True(t, fromTea)
}

func TestContainer_Selector_DebugWritesOutput(t *testing.T) {
	c := NewWithStore(memory.NewConfigStore())
	defer c.Close()

	out := filepath.Join(t.TempDir(), "results.json")
	cfg := domain.DefaultPipelineConfig()
	cfg.DocumentFolderPath = writeCorpus(t)
	cfg.Query = "green tea"
	cfg.Debug = true
	cfg.OutputFile = out

	selector, release, err := c.Selector(cfg)
	require.NoError(t, err)

	_, err = selector.Select(context.Background(), cfg)
	require.NoError(t, err)
	release()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"query": "green tea"`)
}

func TestContainer_Selector_InvalidEmbedding(t *testing.T) {
	c := NewWithStore(memory.NewConfigStore())

	cfg := domain.DefaultPipelineConfig()
	cfg.Query = "green tea"
	cfg.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}

	_, _, err := c.Selector(cfg)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "embedding.provider", cfgErr.Option)
}

func TestContainer_Selector_InvalidConfigCreatesNothing(t *testing.T) {
	c := NewWithStore(memory.NewConfigStore())
	defer c.Close()

	out := filepath.Join(t.TempDir(), "runs.db")
	cfg := domain.DefaultPipelineConfig()
	cfg.Query = "green tea"
	cfg.RetrievalAlgorithm = "invalid"
	cfg.Debug = true
	cfg.OutputFile = out
	cfg.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}

	selector, release, err := c.Selector(cfg)

	assert.Nil(t, selector)
	assert.Nil(t, release)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "retrieval_algorithm", cfgErr.Option)
	assert.NoFileExists(t, out)
}

func TestContainer_Watcher(t *testing.T) {
	c := NewWithStore(memory.NewConfigStore())
	assert.NotNil(t, c.Watcher())
	assert.NoError(t, c.Close())
}

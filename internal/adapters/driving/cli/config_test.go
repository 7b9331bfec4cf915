package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/core/domain"
)

func TestConfigCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["show"])
	assert.True(t, names["init"])
	assert.True(t, names["check"])
	assert.True(t, names["path"])
}

func TestConfigShow(t *testing.T) {
	setupTestServices(t)

	out, _, err := execute("config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "# /home/user/.passel/config.toml")
	assert.Contains(t, out, `query = "green tea"`)
	assert.Contains(t, out, "top_k_docs = 5")
	assert.Contains(t, out, `split_method = "tokens"`)
	assert.Contains(t, out, `embedding.api_key = "(not set)"`)
}

func TestConfigShow_IsDefault(t *testing.T) {
	setupTestServices(t)

	out, _, err := execute("config")

	require.NoError(t, err)
	assert.Contains(t, out, "top_k_docs = 5")
}

func TestConfigShow_JSON(t *testing.T) {
	ws, _ := setupTestServices(t)
	ws.cfg.Embedding.APIKey = "sk-secret"

	out, _, err := execute("config", "show", "--json")

	require.NoError(t, err)
	assert.NotContains(t, out, "sk-secret")

	var options map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &options))
	assert.Equal(t, "green tea", options["query"])
	assert.Equal(t, "bm25", options["retrieval_algorithm"])
	assert.Equal(t, "(set)", options["embedding.api_key"])
}

func TestConfigInit(t *testing.T) {
	ws, _ := setupTestServices(t)
	ws.path = filepath.Join(t.TempDir(), "config.toml")

	out, _, err := execute("config", "init")

	require.NoError(t, err)
	require.NotNil(t, ws.saved)
	assert.Equal(t, domain.DefaultPipelineConfig(), *ws.saved)
	assert.Contains(t, out, "Wrote default configuration to "+ws.path)
}

func TestConfigInit_ExistingFile(t *testing.T) {
	ws, _ := setupTestServices(t)
	ws.path = filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(ws.path, []byte("top_k_docs = 2\n"), 0600))

	_, _, err := execute("config", "init")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Nil(t, ws.saved)
}

func TestConfigInit_Force(t *testing.T) {
	ws, _ := setupTestServices(t)
	ws.path = filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(ws.path, []byte("top_k_docs = 2\n"), 0600))

	_, _, err := execute("config", "init", "--force")

	require.NoError(t, err)
	assert.NotNil(t, ws.saved)
}

func TestConfigCheck(t *testing.T) {
	ws, _ := setupTestServices(t)

	out, _, err := execute("config", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration OK")
	assert.Equal(t, 1, ws.released)
}

func TestConfigCheck_EmptyQuery(t *testing.T) {
	ws, _ := setupTestServices(t)
	ws.cfg.Query = ""

	out, _, err := execute("config", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "query: not set")
	assert.Contains(t, out, "Configuration OK")
}

func TestConfigCheck_Invalid(t *testing.T) {
	ws, _ := setupTestServices(t)
	ws.cfg.PassageOverlap = ws.cfg.PassageMaxLength

	_, _, err := execute("config", "check")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "passage_overlap")
}

func TestConfigCheck_CapabilityUnavailable(t *testing.T) {
	ws, _ := setupTestServices(t)
	ws.selectorErr = domain.ErrEmbeddingUnavailable

	_, _, err := execute("config", "check")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestConfigPath(t *testing.T) {
	setupTestServices(t)

	out, _, err := execute("config", "path")

	require.NoError(t, err)
	assert.Equal(t, "/home/user/.passel/config.toml\n", out)
}

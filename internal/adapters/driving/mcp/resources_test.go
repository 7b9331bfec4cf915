package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/passel/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleConfigResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns effective configuration", func(t *testing.T) {
		cfg := domain.DefaultPipelineConfig()
		cfg.Query = "green tea"
		cfg.Embedding.APIKey = "sk-secret"
		server := newTestServer(t, &mockWorkspace{settings: &mockSettings{cfg: cfg}})

		result, err := server.handleConfigResource(ctx, makeReadResourceRequest("passel://config"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "passel://config", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.NotContains(t, result.Contents[0].Text, "sk-secret")

		var options map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &options))
		assert.Equal(t, "green tea", options["query"])
		assert.Equal(t, "bm25", options["retrieval_algorithm"])
		assert.InDelta(t, 5, options["top_k_docs"], 0)
	})

	t.Run("settings failure", func(t *testing.T) {
		server := newTestServer(t, &mockWorkspace{settingsErr: errors.New("unreadable")})

		_, err := server.handleConfigResource(ctx, makeReadResourceRequest("passel://config"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreadable")
	})
}

func TestServer_handleStrategiesResource(t *testing.T) {
	server := newTestServer(t, &mockWorkspace{})

	result, err := server.handleStrategiesResource(context.Background(), makeReadResourceRequest("passel://strategies"))

	require.NoError(t, err)
	var out map[string][]strategy
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &out))
	assert.Len(t, out["split_method"], 3)
	assert.Len(t, out["retrieval_algorithm"], 2)
	assert.Len(t, out["ranking_method"], 2)
	assert.Equal(t, "bm25", out["retrieval_algorithm"][0].Name)
}

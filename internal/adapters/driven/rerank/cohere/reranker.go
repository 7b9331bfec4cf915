// Package cohere provides a reranker adapter for Cohere-compatible
// /v1/rerank endpoints (Cohere, Jina, text-embeddings-inference, vLLM).
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/ratelimit"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.cohere.com"
	DefaultModel   = "rerank-english-v3.0"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the rerank client.
type Config struct {
	// BaseURL is the service root; "/v1/rerank" is appended.
	BaseURL string

	// Model is the rerank model name.
	Model string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Reranker scores passages through a rerank endpoint.
type Reranker struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
}

// rerankRequest is the Cohere rerank request format.
type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

// rerankResponse is the Cohere rerank response format. Some compatible
// servers report "score" instead of "relevance_score".
type rerankResponse struct {
	Results []struct {
		Index          int      `json:"index"`
		RelevanceScore *float64 `json:"relevance_score"`
		Score          *float64 `json:"score"`
	} `json:"results"`
	Message string `json:"message,omitempty"`
}

// NewReranker creates a new rerank client.
func NewReranker(cfg Config) *Reranker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reranker{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
}

// Rerank scores passages against query. Results carry indices into passages.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string,
	topN int) ([]driven.RerankResult, error) {
	if len(passages) == 0 {
		return []driven.RerankResult{}, nil
	}

	jsonBody, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: passages,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/rerank", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rerank: %w", ratelimit.FromResponse(resp))
	}
	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("rerank error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("rerank error (status %d): %s", resp.StatusCode, string(body))
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]driven.RerankResult, 0, len(rerankResp.Results))
	for _, res := range rerankResp.Results {
		if res.Index < 0 || res.Index >= len(passages) {
			return nil, fmt.Errorf("rerank: result index %d for %d passages: %w",
				res.Index, len(passages), domain.ErrMalformedResponse)
		}
		var score float64
		switch {
		case res.RelevanceScore != nil:
			score = *res.RelevanceScore
		case res.Score != nil:
			score = *res.Score
		default:
			return nil, fmt.Errorf("rerank: result %d has no score: %w", res.Index, domain.ErrMalformedResponse)
		}
		results = append(results, driven.RerankResult{Index: res.Index, Score: score})
	}

	return results, nil
}

// ModelName returns the rerank model name.
func (r *Reranker) ModelName() string {
	return r.model
}

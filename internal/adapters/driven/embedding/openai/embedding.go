// Package openai embeds passages and queries through the OpenAI embeddings
// endpoint or any API that speaks the same protocol.
package openai

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

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBatchSize is the largest input array the endpoint accepts.
	DefaultMaxBatchSize = 2048

	fallbackDimensions = 1536
)

// Config configures the client. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions shortens text-embedding-3 vectors. Zero means the model's
	// native size.
	Dimensions int

	// MaxBatchSize caps the passages sent per request. A document with more
	// passages is embedded in several requests.
	MaxBatchSize int
}

// EmbeddingService is the OpenAI embedding client.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	maxBatch   int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a client. A missing key is reported as
// ErrEmbeddingUnavailable.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrEmbeddingUnavailable)
	}

	s := &EmbeddingService{
		client:     &http.Client{Timeout: orDefault(cfg.Timeout, DefaultTimeout)},
		baseURL:    strings.TrimSuffix(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		apiKey:     cfg.APIKey,
		model:      orDefault(cfg.Model, DefaultModel),
		dimensions: cfg.Dimensions,
		maxBatch:   cfg.MaxBatchSize,
	}
	if s.maxBatch < 1 {
		s.maxBatch = DefaultMaxBatchSize
	}
	if s.dimensions == 0 {
		if d, ok := domain.EmbeddingDimensions()[s.model]; ok {
			s.dimensions = d
		} else {
			s.dimensions = fallbackDimensions
		}
	}
	return s, nil
}

// orDefault returns v, or def when v is the zero value.
func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Embed embeds a single text, typically the query.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in order, splitting them into requests of at
// most MaxBatchSize inputs.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.maxBatch {
		end := min(start+s.maxBatch, len(texts))
		vecs, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// embed sends one request and returns its vectors ordered by input index.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{Model: s.model, Input: texts}
	if strings.HasPrefix(s.model, "text-embedding-3-") {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := s.post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vecs[d.Index] != nil {
			return nil, fmt.Errorf("openai: embedding index %d: %w", d.Index, domain.ErrMalformedResponse)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vecs[d.Index] = vec
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("openai: no embedding for input %d: %w", i, domain.ErrMalformedResponse)
		}
	}
	return vecs, nil
}

// post sends body as JSON and decodes the answer into out. A 429 becomes
// a ratelimit.TooManyRequestsError; other failures carry the API message
// when there is one.
func (s *EmbeddingService) post(ctx context.Context, path string, body any, out *embeddingResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("openai: %w", ratelimit.FromResponse(resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: read response: %w", err)
	}
	decodeErr := json.Unmarshal(raw, out)
	if out.Error != nil {
		return fmt.Errorf("openai: %s (status %d)", out.Error.Message, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if decodeErr != nil {
		return fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	return nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: build ping: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: ping: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// Close is a no-op; the HTTP client holds no resources of its own.
func (s *EmbeddingService) Close() error {
	return nil
}

package domain

import (
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// SplitMethod defines how documents are segmented into passages.
type SplitMethod string

// Available split methods.
const (
	// SplitTokens accumulates whitespace-delimited tokens.
	SplitTokens SplitMethod = "tokens"

	// SplitSentences accumulates sentences up to a character budget.
	SplitSentences SplitMethod = "sentences"

	// SplitSemantic breaks passages where consecutive sentences diverge.
	SplitSemantic SplitMethod = "semantic"
)

// IsValid returns true if the split method is recognised.
func (m SplitMethod) IsValid() bool {
	switch m {
	case SplitTokens, SplitSentences, SplitSemantic:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this method needs an embedding provider.
func (m SplitMethod) RequiresEmbedding() bool {
	return m == SplitSemantic
}

// String returns the string representation.
func (m SplitMethod) String() string {
	return string(m)
}

// Description returns a human-readable description of the method.
func (m SplitMethod) Description() string {
	switch m {
	case SplitTokens:
		return "Token windows (whitespace tokens, overlapping)"
	case SplitSentences:
		return "Sentence windows (character budget, overlapping)"
	case SplitSemantic:
		return "Semantic windows (embedding similarity boundaries)"
	default:
		return unknownDescription
	}
}

// RetrievalAlgorithm defines how whole documents are scored.
type RetrievalAlgorithm string

// Available retrieval algorithms.
const (
	// RetrievalBM25 uses the Okapi BM25 ranking function.
	RetrievalBM25 RetrievalAlgorithm = "bm25"

	// RetrievalTFIDF uses cosine similarity of TF-IDF vectors.
	RetrievalTFIDF RetrievalAlgorithm = "tfidf"
)

// IsValid returns true if the retrieval algorithm is recognised.
func (a RetrievalAlgorithm) IsValid() bool {
	return a == RetrievalBM25 || a == RetrievalTFIDF
}

// String returns the string representation.
func (a RetrievalAlgorithm) String() string {
	return string(a)
}

// Description returns a human-readable description of the algorithm.
func (a RetrievalAlgorithm) Description() string {
	switch a {
	case RetrievalBM25:
		return "BM25 (term saturation + length normalisation)"
	case RetrievalTFIDF:
		return "TF-IDF (cosine similarity)"
	default:
		return unknownDescription
	}
}

// RankingMethod defines how passages are scored against the query.
type RankingMethod string

// Available ranking methods.
const (
	// RankingEmbeddingSimilarity scores by cosine similarity of embeddings.
	RankingEmbeddingSimilarity RankingMethod = "embedding_similarity"

	// RankingExternalRerank delegates scoring to an external reranker.
	RankingExternalRerank RankingMethod = "external_rerank"
)

// rankingAliases maps names used by older configuration files.
var rankingAliases = map[string]RankingMethod{
	"sentence_transformers": RankingEmbeddingSimilarity,
	"cohere_rerank":         RankingExternalRerank,
}

// ParseRankingMethod resolves a configured ranking method name,
// accepting legacy aliases. Unknown names are returned unchanged so that
// validation can report them.
func ParseRankingMethod(s string) RankingMethod {
	name := strings.ToLower(strings.TrimSpace(s))
	if m, ok := rankingAliases[name]; ok {
		return m
	}
	return RankingMethod(name)
}

// IsValid returns true if the ranking method is recognised.
func (m RankingMethod) IsValid() bool {
	return m == RankingEmbeddingSimilarity || m == RankingExternalRerank
}

// RequiresReranker returns true if this method needs an external reranker.
func (m RankingMethod) RequiresReranker() bool {
	return m == RankingExternalRerank
}

// String returns the string representation.
func (m RankingMethod) String() string {
	return string(m)
}

// Description returns a human-readable description of the method.
func (m RankingMethod) Description() string {
	switch m {
	case RankingEmbeddingSimilarity:
		return "Embedding similarity (dense)"
	case RankingExternalRerank:
		return "External rerank service"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderHashing is the built-in deterministic hashing encoder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderHashing:
		return "Hashing (built-in, offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond caps calls to the provider. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// RerankSettings holds external reranker configuration.
type RerankSettings struct {
	// BaseURL is the rerank API endpoint.
	BaseURL string

	// Model is the rerank model name.
	Model string

	// APIKey is the bearer token for the service.
	APIKey string

	// RequestsPerSecond caps calls to the service. Zero means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the reranker has an endpoint.
func (r RerankSettings) IsConfigured() bool {
	return r.BaseURL != ""
}

// PipelineConfig holds every option that drives one selection run.
type PipelineConfig struct {
	DocumentFolderPath string
	Query              string
	PreprocessQuery    bool
	TopKDocs           int
	TopNPassages       int
	MaxOutputPassages  int
	PassageMaxLength   int
	PassageOverlap     int
	SplitMethod        SplitMethod
	RetrievalAlgorithm RetrievalAlgorithm
	RankingMethod      RankingMethod
	OutputFile         string

	// SimilarityThreshold is the redundancy threshold used by deduplication.
	SimilarityThreshold float64

	// Workers bounds per-document concurrency.
	Workers int

	// CapabilityTimeout bounds each ranking call for one document.
	CapabilityTimeout time.Duration

	// Debug sends the final results to the artifact sink.
	Debug bool

	Embedding EmbeddingSettings
	Rerank    RerankSettings
}

// Default option values.
const (
	DefaultDocumentFolder      = "sample_data"
	DefaultTopKDocs            = 5
	DefaultTopNPassages        = 3
	DefaultMaxOutputPassages   = 10
	DefaultPassageMaxLength    = 512
	DefaultPassageOverlap      = 50
	DefaultSimilarityThreshold = 0.8
	DefaultWorkers             = 4
	DefaultCapabilityTimeout   = 30 * time.Second
	DefaultOutputFile          = "results.json"
)

// DefaultPipelineConfig returns options with sensible defaults.
// The embedding provider defaults to the offline hashing encoder.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DocumentFolderPath:  DefaultDocumentFolder,
		TopKDocs:            DefaultTopKDocs,
		TopNPassages:        DefaultTopNPassages,
		MaxOutputPassages:   DefaultMaxOutputPassages,
		PassageMaxLength:    DefaultPassageMaxLength,
		PassageOverlap:      DefaultPassageOverlap,
		SplitMethod:         SplitTokens,
		RetrievalAlgorithm:  RetrievalBM25,
		RankingMethod:       RankingEmbeddingSimilarity,
		OutputFile:          DefaultOutputFile,
		SimilarityThreshold: DefaultSimilarityThreshold,
		Workers:             DefaultWorkers,
		CapabilityTimeout:   DefaultCapabilityTimeout,
		Embedding: EmbeddingSettings{
			Provider: AIProviderHashing,
		},
	}
}

// OutputBudget returns the number of passages a run may return:
// min(TopNPassages * TopKDocs, MaxOutputPassages). The product is never
// formed when it would exceed MaxOutputPassages, so it cannot overflow.
func (c PipelineConfig) OutputBudget() int {
	if c.TopKDocs > 0 && c.TopNPassages > c.MaxOutputPassages/c.TopKDocs {
		return c.MaxOutputPassages
	}
	return min(c.TopNPassages*c.TopKDocs, c.MaxOutputPassages)
}

// Validate checks strategies and budgets. The first problem found is
// returned as a *ConfigurationError naming the offending option.
func (c PipelineConfig) Validate() error {
	if !c.SplitMethod.IsValid() {
		return NewConfigurationError("split_method",
			"unrecognised value %q (want tokens, sentences or semantic)", c.SplitMethod)
	}
	if !c.RetrievalAlgorithm.IsValid() {
		return NewConfigurationError("retrieval_algorithm",
			"unrecognised value %q (want bm25 or tfidf)", c.RetrievalAlgorithm)
	}
	if !c.RankingMethod.IsValid() {
		return NewConfigurationError("ranking_method",
			"unrecognised value %q (want embedding_similarity or external_rerank)", c.RankingMethod)
	}
	if strings.TrimSpace(c.Query) == "" {
		return NewConfigurationError("query", "must not be empty")
	}
	if strings.TrimSpace(c.DocumentFolderPath) == "" {
		return NewConfigurationError("document_folder_path", "must not be empty")
	}

	budgets := []struct {
		option string
		value  int
	}{
		{"top_k_docs", c.TopKDocs},
		{"top_n_passages", c.TopNPassages},
		{"max_output_passages", c.MaxOutputPassages},
		{"passage_max_length", c.PassageMaxLength},
	}
	for _, b := range budgets {
		if b.value < 1 {
			return NewConfigurationError(b.option, "must be at least 1, got %d", b.value)
		}
	}
	if c.PassageOverlap < 0 {
		return NewConfigurationError("passage_overlap", "must not be negative, got %d", c.PassageOverlap)
	}
	if c.PassageOverlap >= c.PassageMaxLength {
		return NewConfigurationError("passage_overlap",
			"must be less than passage_max_length (%d), got %d", c.PassageMaxLength, c.PassageOverlap)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return NewConfigurationError("similarity_threshold",
			"must be between 0 and 1, got %g", c.SimilarityThreshold)
	}
	if c.Workers < 1 {
		return NewConfigurationError("workers", "must be at least 1, got %d", c.Workers)
	}
	if c.CapabilityTimeout < 0 {
		return NewConfigurationError("capability_timeout", "must not be negative, got %s", c.CapabilityTimeout)
	}
	return nil
}

// Option is one named configuration value.
type Option struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Options lists the effective configuration under its option names, in
// file order. API keys are reported as set or unset, never in clear.
func (c PipelineConfig) Options() []Option {
	return []Option{
		{"document_folder_path", c.DocumentFolderPath},
		{"query", c.Query},
		{"preprocess_query", c.PreprocessQuery},
		{"top_k_docs", c.TopKDocs},
		{"top_n_passages", c.TopNPassages},
		{"max_output_passages", c.MaxOutputPassages},
		{"passage_max_length", c.PassageMaxLength},
		{"passage_overlap", c.PassageOverlap},
		{"split_method", c.SplitMethod.String()},
		{"retrieval_algorithm", c.RetrievalAlgorithm.String()},
		{"ranking_method", c.RankingMethod.String()},
		{"output_file", c.OutputFile},
		{"similarity_threshold", c.SimilarityThreshold},
		{"workers", c.Workers},
		{"capability_timeout", c.CapabilityTimeout.String()},
		{"debug", c.Debug},
		{"embedding.provider", c.Embedding.Provider.String()},
		{"embedding.model", c.Embedding.Model},
		{"embedding.base_url", c.Embedding.BaseURL},
		{"embedding.api_key", maskSecret(c.Embedding.APIKey)},
		{"embedding.requests_per_second", c.Embedding.RequestsPerSecond},
		{"rerank.base_url", c.Rerank.BaseURL},
		{"rerank.model", c.Rerank.Model},
		{"rerank.api_key", maskSecret(c.Rerank.APIKey)},
		{"rerank.requests_per_second", c.Rerank.RequestsPerSecond},
	}
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "(set)"
}

// AllSplitMethods returns all available split methods.
func AllSplitMethods() []SplitMethod {
	return []SplitMethod{SplitTokens, SplitSentences, SplitSemantic}
}

// AllRetrievalAlgorithms returns all available retrieval algorithms.
func AllRetrievalAlgorithms() []RetrievalAlgorithm {
	return []RetrievalAlgorithm{RetrievalBM25, RetrievalTFIDF}
}

// AllRankingMethods returns all available ranking methods.
func AllRankingMethods() []RankingMethod {
	return []RankingMethod{RankingEmbeddingSimilarity, RankingExternalRerank}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderHashing: "hashing-256",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Built-in
		"hashing-256": 256,
	}
}

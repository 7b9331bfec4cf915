package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyFolder            = "document_folder_path"
	keyQuery             = "query"
	keyQueryText         = "query_text"
	keyPreprocessQuery   = "preprocess_query"
	keyTopKDocs          = "top_k_docs"
	keyTopNPassages      = "top_n_passages"
	keyMaxOutput         = "max_output_passages"
	keyMaxLength         = "passage_max_length"
	keyOverlap           = "passage_overlap"
	keySplitMethod       = "split_method"
	keyRetrieval         = "retrieval_algorithm"
	keyRanking           = "ranking_method"
	keyOutputFile        = "output_file"
	keySimilarity        = "similarity_threshold"
	keyWorkers           = "workers"
	keyCapabilityTimeout = "capability_timeout"
	keyDebug             = "debug"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedRPS          = "embedding.requests_per_second"
	keyRerankBaseURL     = "rerank.base_url"
	keyRerankModel       = "rerank.model"
	keyRerankAPIKey      = "rerank.api_key"
	keyRerankRPS         = "rerank.requests_per_second"
)

// Environment variables holding secrets.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIAPIKey = "PASSEL_OPENAI_API_KEY"
	EnvRerankAPIKey = "PASSEL_RERANK_API_KEY"
)

// SettingsService builds pipeline configuration from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get builds the pipeline configuration. Unset keys take their defaults;
// values of the wrong shape are reported as configuration errors.
// Strategy names are passed through unchanged so that validation can
// name the offending option.
func (s *SettingsService) Get() (domain.PipelineConfig, error) {
	d := domain.DefaultPipelineConfig()

	timeout, err := s.getDuration(keyCapabilityTimeout, d.CapabilityTimeout)
	if err != nil {
		return d, err
	}
	provider, err := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	if err != nil {
		return d, err
	}

	query := s.configStore.GetString(keyQuery)
	if query == "" {
		query = s.configStore.GetString(keyQueryText)
	}

	cfg := domain.PipelineConfig{
		DocumentFolderPath:  s.getString(keyFolder, d.DocumentFolderPath),
		Query:               query,
		PreprocessQuery:     s.getBool(keyPreprocessQuery, d.PreprocessQuery),
		TopKDocs:            s.getInt(keyTopKDocs, d.TopKDocs),
		TopNPassages:        s.getInt(keyTopNPassages, d.TopNPassages),
		MaxOutputPassages:   s.getInt(keyMaxOutput, d.MaxOutputPassages),
		PassageMaxLength:    s.getInt(keyMaxLength, d.PassageMaxLength),
		PassageOverlap:      s.getInt(keyOverlap, d.PassageOverlap),
		SplitMethod:         domain.SplitMethod(strings.ToLower(s.getString(keySplitMethod, d.SplitMethod.String()))),
		RetrievalAlgorithm:  domain.RetrievalAlgorithm(strings.ToLower(s.getString(keyRetrieval, d.RetrievalAlgorithm.String()))),
		RankingMethod:       domain.ParseRankingMethod(s.getString(keyRanking, d.RankingMethod.String())),
		OutputFile:          s.getString(keyOutputFile, d.OutputFile),
		SimilarityThreshold: s.getFloat(keySimilarity, d.SimilarityThreshold),
		Workers:             s.getInt(keyWorkers, d.Workers),
		CapabilityTimeout:   timeout,
		Debug:               s.getBool(keyDebug, d.Debug),
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             s.configStore.GetString(keyEmbedModel),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.secret(keyEmbedAPIKey, EnvOpenAIAPIKey),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, 0),
		},
		Rerank: domain.RerankSettings{
			BaseURL:           s.configStore.GetString(keyRerankBaseURL),
			Model:             s.configStore.GetString(keyRerankModel),
			APIKey:            s.secret(keyRerankAPIKey, EnvRerankAPIKey),
			RequestsPerSecond: s.getFloat(keyRerankRPS, 0),
		},
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = domain.DefaultEmbeddingModels()[cfg.Embedding.Provider]
	}

	return cfg, nil
}

// Save persists the pipeline configuration. Secrets are never written.
func (s *SettingsService) Save(cfg domain.PipelineConfig) error {
	values := []struct {
		key   string
		value any
	}{
		{keyFolder, cfg.DocumentFolderPath},
		{keyQuery, cfg.Query},
		{keyPreprocessQuery, cfg.PreprocessQuery},
		{keyTopKDocs, cfg.TopKDocs},
		{keyTopNPassages, cfg.TopNPassages},
		{keyMaxOutput, cfg.MaxOutputPassages},
		{keyMaxLength, cfg.PassageMaxLength},
		{keyOverlap, cfg.PassageOverlap},
		{keySplitMethod, cfg.SplitMethod.String()},
		{keyRetrieval, cfg.RetrievalAlgorithm.String()},
		{keyRanking, cfg.RankingMethod.String()},
		{keyOutputFile, cfg.OutputFile},
		{keySimilarity, cfg.SimilarityThreshold},
		{keyWorkers, cfg.Workers},
		{keyCapabilityTimeout, cfg.CapabilityTimeout.String()},
		{keyDebug, cfg.Debug},
		{keyEmbedProvider, cfg.Embedding.Provider.String()},
		{keyEmbedModel, cfg.Embedding.Model},
		{keyEmbedBaseURL, cfg.Embedding.BaseURL},
		{keyEmbedRPS, cfg.Embedding.RequestsPerSecond},
		{keyRerankBaseURL, cfg.Rerank.BaseURL},
		{keyRerankModel, cfg.Rerank.Model},
		{keyRerankRPS, cfg.Rerank.RequestsPerSecond},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt distinguishes an explicit zero from an unset key, so that a
// configured 0 reaches validation.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration accepts a Go duration string ("30s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal, nil
	}
	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, domain.NewConfigurationError(key, "invalid duration %q", v)
		}
		return d, nil
	case int, int64, float64:
		return time.Duration(s.configStore.GetFloat(key) * float64(time.Second)), nil
	default:
		return 0, domain.NewConfigurationError(key, "want a duration such as \"30s\", got %v", val)
	}
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) (domain.AIProvider, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return "", domain.NewConfigurationError(key,
			"unrecognised value %q (want ollama, openai or hashing)", val)
	}
	return provider, nil
}

// secret prefers the environment over the config file.
func (s *SettingsService) secret(key, env string) string {
	if v := s.getenv(env); v != "" {
		return v
	}
	return s.configStore.GetString(key)
}

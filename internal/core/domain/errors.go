package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfiguration indicates an invalid or unrecognised option.
	// It is fatal and reported before any work starts.
	ErrConfiguration = errors.New("configuration error")

	// ErrIngestion indicates a document's text could not be extracted.
	ErrIngestion = errors.New("ingestion error")

	// ErrRanking indicates an external scoring capability failed for a document.
	ErrRanking = errors.New("ranking error")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles a document format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Dense ranking, semantic segmentation and deduplication need it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankerUnavailable indicates the external reranker is not configured.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrMalformedResponse indicates an external capability answered with
	// data that does not match the request.
	ErrMalformedResponse = errors.New("malformed response")
)

// ConfigurationError names the option that made a run impossible.
type ConfigurationError struct {
	// Option is the configuration key at fault.
	Option string

	// Reason explains what is wrong with it.
	Reason string

	// Err is an optional underlying cause.
	Err error
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(option, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Option: option, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Option, e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// IngestionError reports a document that could not be read or extracted.
type IngestionError struct {
	URI string
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion error: %s: %v", e.URI, e.Err)
}

// Unwrap returns the underlying cause.
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIngestion.
func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

// RankingError reports a document whose passages could not be scored.
type RankingError struct {
	DocumentID string
	Err        error
}

func (e *RankingError) Error() string {
	return fmt.Sprintf("ranking error: %s: %v", e.DocumentID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RankingError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRanking.
func (e *RankingError) Is(target error) bool {
	return target == ErrRanking
}

package domain

import "time"

// Query is the user query for one run.
type Query struct {
	// Raw is the text as supplied by the user.
	Raw string

	// Normalized is the preprocessed form. It may be empty even when
	// Preprocessed is set, e.g. for a query made only of stop words.
	Normalized string

	// Preprocessed records that normalisation was applied.
	Preprocessed bool
}

// Text returns the query text every stage must use: the normalised form
// when normalisation was applied, the raw text otherwise.
func (q Query) Text() string {
	if q.Preprocessed {
		return q.Normalized
	}
	return q.Raw
}

// ScoredCandidate is a passage scored against the query.
// Scores are only comparable within one run.
type ScoredCandidate struct {
	// DocumentID is the document the passage came from.
	DocumentID string `json:"document"`

	// Passage is the original passage text.
	Passage string `json:"passage"`

	// Score is the relevance score (higher is more relevant).
	Score float64 `json:"score"`

	// Position is the passage ordinal within its document.
	Position int `json:"-"`

	// Embedding is the passage vector when one was computed during the run.
	Embedding []float32 `json:"-"`
}

// SelectionStats counts what happened to documents during a run.
type SelectionStats struct {
	// DocumentsRead is the number of documents successfully extracted.
	DocumentsRead int `json:"documents_read"`

	// DocumentsSkipped is the number of documents that failed ingestion.
	DocumentsSkipped int `json:"documents_skipped"`

	// DocumentsRetrieved is the number of documents kept by retrieval.
	DocumentsRetrieved int `json:"documents_retrieved"`

	// DocumentsFailed is the number of retrieved documents whose ranking failed.
	DocumentsFailed int `json:"documents_failed"`

	// PassagesRanked is the number of passages scored across documents.
	PassagesRanked int `json:"passages_ranked"`
}

// SelectionResult is the outcome of one pipeline run.
type SelectionResult struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`

	// Query is the query as used by the run.
	Query Query `json:"-"`

	// Candidates are the final passages, best first.
	Candidates []ScoredCandidate `json:"results"`

	// Stats summarises the run.
	Stats SelectionStats `json:"stats"`

	// Warnings lists per-document problems that did not abort the run.
	Warnings []string `json:"warnings,omitempty"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"-"`
}

// Artifact is the durable record of a run handed to an ArtifactSink.
type Artifact struct {
	// RunID identifies the run.
	RunID string `json:"run_id,omitempty"`

	// Query is the query text used by the run.
	Query string `json:"query"`

	// Results are the final passages, best first.
	Results []ScoredCandidate `json:"results"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

package domain

import "time"

// Document represents an extracted document with metadata.
// It is the canonical representation after normalisation and is
// immutable for the duration of one selection run.
type Document struct {
	// ID is the unique identifier for the document (its file name).
	ID string

	// URI is the original location (file path).
	URI string

	// Content is the full text content after extraction.
	// This is the complete document text before segmentation.
	Content string

	// Metadata describes the document.
	Metadata Metadata
}

// Metadata holds descriptive document properties recovered by extraction.
// Every field is optional.
type Metadata struct {
	// Title is the human-readable title.
	Title string `json:"title,omitempty"`

	// Authors lists the document authors as reported by the format.
	Authors string `json:"authors,omitempty"`

	// ModifiedAt is the last-modified time, zero when unknown.
	ModifiedAt time.Time `json:"last_modified,omitempty"`

	// Type is the file extension without the dot (e.g. "pdf").
	Type string `json:"type,omitempty"`

	// MIMEType is the detected content type.
	MIMEType string `json:"mime_type,omitempty"`
}

// Passage represents a window of document text produced by segmentation.
type Passage struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Text is the original, unprocessed text span.
	Text string

	// Processed is the normalised, stop-word-stripped span.
	// Empty until the preprocess post-processor has run.
	Processed string

	// Position is the ordinal position within the document.
	Position int
}

// LexicalText returns the text used for term statistics, preferring
// the preprocessed form when it is available.
func (p Passage) LexicalText() string {
	if p.Processed != "" {
		return p.Processed
	}
	return p.Text
}

// SegmentedDocument pairs a document with its surviving passages and the
// preprocessed full text used by lexical retrieval.
type SegmentedDocument struct {
	Document Document

	// Processed is the preprocessed full text.
	Processed string

	// Passages are the valid passages in document order.
	Passages []Passage
}

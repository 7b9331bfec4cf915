package domain

// RawDocument represents opaque bytes fetched by a connector.
// It is the connector's output before text extraction.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}

// ChangeType represents the type of document change.
type ChangeType int

const (
	// ChangeCreated indicates a new document.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified document.
	ChangeUpdated

	// ChangeDeleted indicates a removed document.
	ChangeDeleted
)

// String returns a short label for the change.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DocumentChange represents a change event observed in a document folder.
type DocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// URI is the affected path.
	URI string
}

// Package domain defines the core business entities for passel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An extracted document with metadata
//   - Passage: A contiguous excerpt of a document
//   - ScoredCandidate: A ranked passage
//   - Query: The user query and its normalised form
//   - PipelineConfig: The options that drive one selection run
//   - RawDocument: Opaque bytes from a connector
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

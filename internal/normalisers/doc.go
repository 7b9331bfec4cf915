// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; the registry is
// the TextExtractor used by the selection pipeline.
package normalisers

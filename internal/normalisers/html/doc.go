// Package html provides a Normaliser implementation for HTML documents.
// It extracts readable text, dropping scripts, styles and markup and
// decoding entities.
package html

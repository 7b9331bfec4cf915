// Package textproc holds the text primitives shared by the pipeline:
// tokenisation, normalisation, sentence splitting and vector similarity.
package textproc

import (
	"math"
	"regexp"
	"strings"
)

// nonWord matches runs of characters that are not letters, digits or underscore.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Tokenize splits text on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// Terms returns the lowercased whitespace tokens of text.
// Lexical scorers use it for both queries and documents.
func Terms(text string) []string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Preprocess normalises text for lexical matching: runs of non-word
// characters become a single space, the text is lowercased and English
// stop words are removed. The result is single-space separated.
func Preprocess(text string) string {
	text = nonWord.ReplaceAllString(text, " ")
	text = strings.ToLower(text)

	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if !IsStopWord(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// SplitSentences splits content on sentence terminators and newlines.
// Terminators stay attached to their sentence; empty sentences are dropped.
func SplitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// Cosine returns the cosine similarity of two vectors.
// Mismatched lengths and zero vectors give 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

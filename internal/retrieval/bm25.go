package retrieval

import (
	"math"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/textproc"
)

// BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Ensure BM25 implements the interface.
var _ driven.DocumentScorer = (*BM25)(nil)

// BM25 scores documents with Okapi BM25 over whitespace tokens.
type BM25 struct {
	k1 float64
	b  float64
}

// NewBM25 creates a BM25 scorer with the default parameters.
func NewBM25() *BM25 {
	return &BM25{k1: DefaultK1, b: DefaultB}
}

// Algorithm returns the strategy identifier.
func (s *BM25) Algorithm() domain.RetrievalAlgorithm {
	return domain.RetrievalBM25
}

// Score fits corpus statistics over texts and scores each against query.
// Repeated query terms contribute once per occurrence.
func (s *BM25) Score(query string, texts []string) []float64 {
	scores := make([]float64, len(texts))
	if len(texts) == 0 {
		return scores
	}

	termFreqs := make([]map[string]int, len(texts))
	docLens := make([]int, len(texts))
	docFreq := make(map[string]int)
	var totalLen int

	for i, text := range texts {
		tokens := textproc.Terms(text)
		docLens[i] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			docFreq[tok]++
		}
		termFreqs[i] = tf
	}

	n := float64(len(texts))
	avgLen := float64(totalLen) / n
	if avgLen == 0 {
		return scores
	}

	for _, term := range textproc.Terms(query) {
		df, ok := docFreq[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))

		for i, tf := range termFreqs {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			norm := 1 - s.b + s.b*float64(docLens[i])/avgLen
			scores[i] += idf * (f * (s.k1 + 1)) / (f + s.k1*norm)
		}
	}

	return scores
}

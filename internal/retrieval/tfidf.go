package retrieval

import (
	"math"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
	"github.com/custodia-labs/passel/internal/textproc"
)

// Ensure TFIDF implements the interface.
var _ driven.DocumentScorer = (*TFIDF)(nil)

// TFIDF scores documents by cosine similarity of L2-normalised TF-IDF
// vectors. The vocabulary and smoothed idf, ln((1+n)/(1+df))+1, are fitted
// over the documents of each call. Query terms outside the vocabulary are
// ignored.
type TFIDF struct{}

// NewTFIDF creates a TF-IDF scorer.
func NewTFIDF() *TFIDF {
	return &TFIDF{}
}

// Algorithm returns the strategy identifier.
func (s *TFIDF) Algorithm() domain.RetrievalAlgorithm {
	return domain.RetrievalTFIDF
}

// Score returns the cosine similarity of query and each text.
func (s *TFIDF) Score(query string, texts []string) []float64 {
	scores := make([]float64, len(texts))
	if len(texts) == 0 {
		return scores
	}

	counts := make([]map[string]float64, len(texts))
	docFreq := make(map[string]int)
	for i, text := range texts {
		counts[i] = termCounts(textproc.Terms(text))
		for term := range counts[i] {
			docFreq[term]++
		}
	}

	n := float64(len(texts))
	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}

	q := termCounts(textproc.Terms(query))
	for term := range q {
		if _, ok := idf[term]; !ok {
			delete(q, term)
		}
	}
	weigh(q, idf)
	if len(q) == 0 {
		return scores
	}

	for i, doc := range counts {
		weigh(doc, idf)
		var dot float64
		for term, w := range q {
			dot += w * doc[term]
		}
		scores[i] = dot
	}
	return scores
}

func termCounts(terms []string) map[string]float64 {
	m := make(map[string]float64, len(terms))
	for _, t := range terms {
		m[t]++
	}
	return m
}

// weigh multiplies counts by idf and L2-normalises in place.
func weigh(v map[string]float64, idf map[string]float64) {
	var norm float64
	for term, c := range v {
		w := c * idf[term]
		v[term] = w
		norm += w * w
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for term := range v {
		v[term] /= norm
	}
}

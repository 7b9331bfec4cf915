// Package retrieval ranks whole documents against a query with a lexical
// algorithm (BM25 or TF-IDF).
package retrieval

import (
	"sort"

	"github.com/custodia-labs/passel/internal/core/domain"
	"github.com/custodia-labs/passel/internal/core/ports/driven"
)

// New returns the scorer for algorithm.
func New(algorithm domain.RetrievalAlgorithm) (driven.DocumentScorer, error) {
	switch algorithm {
	case domain.RetrievalBM25:
		return NewBM25(), nil
	case domain.RetrievalTFIDF:
		return NewTFIDF(), nil
	default:
		return nil, domain.NewConfigurationError("retrieval_algorithm",
			"unrecognised value %q (want bm25 or tfidf)", algorithm)
	}
}

// Hit is one retrieved text.
type Hit struct {
	// Index is the position of the text in the scored input.
	Index int

	// Score is the lexical relevance score.
	Score float64
}

// TopK scores texts and returns up to k hits, best first. Ties keep input order.
func TopK(scorer driven.DocumentScorer, query string, texts []string, k int) []Hit {
	if len(texts) == 0 || k <= 0 {
		return nil
	}

	scores := scorer.Score(query, texts)
	hits := make([]Hit, len(texts))
	for i := range texts {
		hits[i] = Hit{Index: i, Score: scores[i]}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

// Retrieve returns up to topK documents ranked against query by algorithm,
// scoring each document's Content. An empty set returns an empty result.
func Retrieve(query string, docs []domain.Document, topK int,
	algorithm domain.RetrievalAlgorithm) ([]domain.Document, error) {
	scorer, err := New(algorithm)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Content
	}

	hits := TopK(scorer, query, texts, topK)
	out := make([]domain.Document, 0, len(hits))
	for _, h := range hits {
		out = append(out, docs[h.Index])
	}
	return out, nil
}

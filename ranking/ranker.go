// Package ranking orders embedded candidates by similarity to a query vector.
package ranking

import (
	"sort"

	"github.com/embedkit/embedkit/similarity"
)

// Candidate is an already-embedded item to be ranked.
type Candidate struct {
	ID     string
	Vector []float32
}

// Result is a ranked candidate with its similarity score.
type Result struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

// Ranker orders candidates by descending similarity to a query vector.
type Ranker struct {
	compare similarity.SimilarityFunc
}

// NewRanker creates a Ranker using the given comparator.
// A nil comparator defaults to cosine similarity.
func NewRanker(compare similarity.SimilarityFunc) *Ranker {
	if compare == nil {
		compare = similarity.Cosine
	}
	return &Ranker{compare: compare}
}

// Rank scores every candidate against query and returns results sorted by
// descending score. The sort is stable: candidates with equal scores keep
// their relative input order, and incomparable scores (NaN) rank as equal
// rather than reordering unpredictably.
func (r *Ranker) Rank(query []float32, candidates []Candidate) []Result {
	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{ID: c.ID, Score: r.compare(query, c.Vector)}
	}

	// A strict > comparison is false for NaN on both sides, so NaN scores
	// stay where stability puts them.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// TopK returns the prefix of ranked with length min(k, len(ranked)).
func TopK(ranked []Result, k int) []Result {
	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

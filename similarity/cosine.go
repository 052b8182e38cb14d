package similarity

import "github.com/embedkit/embedkit/vector"

// Cosine computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, or 0 for mismatched lengths or
// zero-magnitude vectors.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	score, err := vector.Cosine(a, b)
	if err != nil {
		return 0
	}
	return score
}

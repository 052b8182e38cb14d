// Package similarity provides comparator functions for ranking embedding vectors.
package similarity

// SimilarityFunc computes a similarity score between two embedding vectors.
// Higher values indicate greater similarity. Comparators never fail: a
// length mismatch or an empty input scores 0.
type SimilarityFunc func(a, b []float32) float32

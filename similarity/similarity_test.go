package similarity

import (
	"math"
	"testing"
)

// Test similarity functions with known vectors
func TestSimilarityFunctions(t *testing.T) {
	vec1 := []float32{1, 0, 0}
	vec2 := []float32{0, 1, 0}
	vec3 := []float32{1, 0, 0} // Same as vec1

	t.Run("Cosine", func(t *testing.T) {
		// Orthogonal vectors (should be 0)
		sim := Cosine(vec1, vec2)
		if sim != 0 {
			t.Errorf("Expected 0, got %f", sim)
		}

		// Identical vectors (should be 1)
		sim = Cosine(vec1, vec3)
		if math.Abs(float64(sim)-1) > 0.001 {
			t.Errorf("Expected 1, got %f", sim)
		}

		// Empty vectors
		sim = Cosine([]float32{}, []float32{})
		if sim != 0 {
			t.Errorf("Expected 0 for empty vectors, got %f", sim)
		}

		// Different length vectors
		sim = Cosine(vec1, []float32{1, 0})
		if sim != 0 {
			t.Errorf("Expected 0 for different length vectors, got %f", sim)
		}

		// Zero-magnitude vector
		sim = Cosine([]float32{0, 0, 0}, vec1)
		if sim != 0 {
			t.Errorf("Expected 0 for zero-magnitude vector, got %f", sim)
		}
	})

	t.Run("Euclidean", func(t *testing.T) {
		// Identical vectors (should be 1)
		sim := Euclidean(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}

		// Different vectors (should be less than 1)
		sim = Euclidean(vec1, vec2)
		if sim >= 1 {
			t.Errorf("Expected < 1, got %f", sim)
		}

		// Empty vectors
		sim = Euclidean([]float32{}, []float32{})
		if sim != 0 {
			t.Errorf("Expected 0 for empty vectors, got %f", sim)
		}
	})

	t.Run("DotProduct", func(t *testing.T) {
		// Orthogonal vectors (should be 0)
		sim := DotProduct(vec1, vec2)
		if sim != 0 {
			t.Errorf("Expected 0, got %f", sim)
		}

		// Identical unit vectors (should be 1)
		sim = DotProduct(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}
	})

	t.Run("Manhattan", func(t *testing.T) {
		// Identical vectors (should be 1)
		sim := Manhattan(vec1, vec3)
		if sim != 1 {
			t.Errorf("Expected 1, got %f", sim)
		}

		// Different vectors (should be less than 1)
		sim = Manhattan(vec1, vec2)
		if sim >= 1 {
			t.Errorf("Expected < 1, got %f", sim)
		}
	})

	t.Run("Pearson", func(t *testing.T) {
		// Perfectly correlated vectors (should be 1)
		a := []float32{1, 2, 3, 4}
		b := []float32{2, 4, 6, 8}
		sim := Pearson(a, b)
		if math.Abs(float64(sim)-1) > 0.001 {
			t.Errorf("Expected 1, got %f", sim)
		}

		// Perfectly anti-correlated vectors (should be -1)
		c := []float32{4, 3, 2, 1}
		sim = Pearson(a, c)
		if math.Abs(float64(sim)+1) > 0.001 {
			t.Errorf("Expected -1, got %f", sim)
		}

		// Constant vector has no variance
		sim = Pearson(a, []float32{5, 5, 5, 5})
		if sim != 0 {
			t.Errorf("Expected 0 for constant vector, got %f", sim)
		}
	})
}

package embedkit

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/embedkit/embedkit/options"
	"github.com/embedkit/embedkit/vector"
)

// mockEncoder produces deterministic pseudo-embeddings derived from the
// text, so cache behavior and ranking are reproducible without a real
// model. Specific texts can be pinned to fixed vectors or forced to fail.
type mockEncoder struct {
	mu      sync.Mutex
	calls   int
	dim     int
	vectors map[string][]float32
	fail    map[string]bool
}

func newMockEncoder(dim int) *mockEncoder {
	return &mockEncoder{
		dim:     dim,
		vectors: make(map[string][]float32),
		fail:    make(map[string]bool),
	}
}

func (m *mockEncoder) EmbedText(text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	pinned, hasPinned := m.vectors[text]
	shouldFail := m.fail[text]
	m.mu.Unlock()

	if shouldFail {
		return nil, errors.New("encoder unavailable")
	}
	if hasPinned {
		return vector.Clone(pinned), nil
	}

	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, m.dim)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000 + 0.001
	}
	return vec, nil
}

func (m *mockEncoder) ModelName() string    { return "mock-minilm" }
func (m *mockEncoder) ModelVersion() string { return "v1" }
func (m *mockEncoder) Dimension() int       { return m.dim }
func (m *mockEncoder) Close()               {}

func (m *mockEncoder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestService(t *testing.T, enc Encoder, opts ...options.Option) *Service {
	t.Helper()
	opts = append([]options.Option{options.WithFIFOBackend(16)}, opts...)
	if enc != nil {
		opts = append(opts, options.WithEncoder(enc))
	}
	svc, err := New(opts...)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestNew(t *testing.T) {
	t.Run("requires a backend", func(t *testing.T) {
		if _, err := New(); err == nil {
			t.Error("expected error without a backend")
		}
	})

	t.Run("encoder is optional", func(t *testing.T) {
		svc, err := New(options.WithFIFOBackend(4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer svc.Close()
	})
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("operations fail before binding", func(t *testing.T) {
		svc := newTestService(t, nil)
		defer svc.Close()

		if _, err := svc.EmbedText(ctx, "hello"); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("EmbedText: expected ErrNotInitialized, got %v", err)
		}
		if _, err := svc.EmbedBatch(ctx, []string{"a"}); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("EmbedBatch: expected ErrNotInitialized, got %v", err)
		}
		if _, err := svc.FindSimilar(ctx, "q", []string{"a"}, 1); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("FindSimilar: expected ErrNotInitialized, got %v", err)
		}
		if err := svc.SaveEmbeddings("x", nil, nil); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("SaveEmbeddings: expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("binding is one-way", func(t *testing.T) {
		svc := newTestService(t, nil)
		defer svc.Close()

		if err := svc.Initialize(newMockEncoder(3)); err != nil {
			t.Fatalf("first bind failed: %v", err)
		}
		if err := svc.Initialize(newMockEncoder(3)); !errors.Is(err, ErrAlreadyInitialized) {
			t.Errorf("expected ErrAlreadyInitialized, got %v", err)
		}
	})

	t.Run("constructor-bound encoder cannot be replaced", func(t *testing.T) {
		svc := newTestService(t, newMockEncoder(3))
		defer svc.Close()

		if err := svc.Initialize(newMockEncoder(3)); !errors.Is(err, ErrAlreadyInitialized) {
			t.Errorf("expected ErrAlreadyInitialized, got %v", err)
		}
	})

	t.Run("nil encoder rejected", func(t *testing.T) {
		svc := newTestService(t, nil)
		defer svc.Close()

		if err := svc.Initialize(nil); err == nil {
			t.Error("expected error for nil encoder")
		}
	})
}

func TestEmbedText(t *testing.T) {
	ctx := context.Background()

	t.Run("caches and normalizes", func(t *testing.T) {
		enc := newMockEncoder(3)
		svc := newTestService(t, enc)
		defer svc.Close()

		first, err := svc.EmbedText(ctx, "hello world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if norm := vector.Norm(first); math.Abs(float64(norm)-1) > 1e-5 {
			t.Errorf("expected a unit-length embedding, got norm %v", norm)
		}

		second, err := svc.EmbedText(ctx, "hello world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if enc.callCount() != 1 {
			t.Errorf("expected a single encoder call, got %d", enc.callCount())
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatal("cached embedding differs from the computed one")
			}
		}

		stats := svc.Stats()
		if stats.CacheHits != 1 || stats.CacheMisses != 1 {
			t.Errorf("expected 1 hit and 1 miss, got %+v", stats)
		}
		if stats.Embeddings != 2 {
			t.Errorf("expected 2 served embeddings, got %d", stats.Embeddings)
		}
	})

	t.Run("returned vector is caller-owned", func(t *testing.T) {
		svc := newTestService(t, newMockEncoder(3))
		defer svc.Close()

		first, _ := svc.EmbedText(ctx, "text")
		first[0] = 42

		second, _ := svc.EmbedText(ctx, "text")
		if second[0] == 42 {
			t.Error("mutating a returned vector corrupted the cache")
		}
	})

	t.Run("encoder failure is reported", func(t *testing.T) {
		enc := newMockEncoder(3)
		enc.fail["broken"] = true
		svc := newTestService(t, enc)
		defer svc.Close()

		if _, err := svc.EmbedText(ctx, "broken"); err == nil {
			t.Error("expected encoder failure to propagate")
		}

		stats := svc.Stats()
		if stats.CacheMisses != 1 || stats.Embeddings != 0 {
			t.Errorf("failed embed should count a miss and no serving: %+v", stats)
		}
	})

	t.Run("zero-capacity cache always recomputes", func(t *testing.T) {
		enc := newMockEncoder(3)
		svc, err := New(options.WithFIFOBackend(0), options.WithEncoder(enc))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		defer svc.Close()

		svc.EmbedText(ctx, "a")
		svc.EmbedText(ctx, "a")
		if enc.callCount() != 2 {
			t.Errorf("expected recomputation with caching disabled, got %d calls", enc.callCount())
		}
	})
}

func TestEmbedBatchMethod(t *testing.T) {
	ctx := context.Background()

	t.Run("positional results with partial failures", func(t *testing.T) {
		enc := newMockEncoder(3)
		enc.fail["bad"] = true
		svc := newTestService(t, enc)
		defer svc.Close()

		out, err := svc.EmbedBatch(ctx, []string{"one", "bad", "three"})
		if err == nil {
			t.Error("expected a joined error for the failed item")
		}
		if len(out) != 3 {
			t.Fatalf("expected 3 slots, got %d", len(out))
		}
		if out[0] == nil || out[2] == nil {
			t.Error("expected successful items to embed")
		}
		if out[1] != nil {
			t.Error("expected the failed slot to be nil")
		}
	})

	t.Run("parallel path matches sequential", func(t *testing.T) {
		texts := make([]string, 25)
		for i := range texts {
			texts[i] = fmt.Sprintf("text number %d", i)
		}

		seqSvc := newTestService(t, newMockEncoder(4), options.WithBatchThreshold(100))
		defer seqSvc.Close()
		parSvc := newTestService(t, newMockEncoder(4), options.WithBatchThreshold(5), options.WithWorkers(4))
		defer parSvc.Close()

		seq, err := seqSvc.EmbedBatch(ctx, texts)
		if err != nil {
			t.Fatalf("sequential batch failed: %v", err)
		}
		par, err := parSvc.EmbedBatch(ctx, texts)
		if err != nil {
			t.Fatalf("parallel batch failed: %v", err)
		}

		for i := range texts {
			for j := range seq[i] {
				if seq[i][j] != par[i][j] {
					t.Fatalf("text %d: parallel result differs from sequential", i)
				}
			}
		}
	})

	t.Run("batch populates the cache", func(t *testing.T) {
		enc := newMockEncoder(3)
		svc := newTestService(t, enc)
		defer svc.Close()

		texts := []string{"a", "b", "c"}
		if _, err := svc.EmbedBatch(ctx, texts); err != nil {
			t.Fatalf("batch failed: %v", err)
		}
		if _, err := svc.EmbedBatch(ctx, texts); err != nil {
			t.Fatalf("batch failed: %v", err)
		}
		if enc.callCount() != 3 {
			t.Errorf("expected 3 encoder calls across both batches, got %d", enc.callCount())
		}
	})
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()

	enc := newMockEncoder(2)
	enc.vectors["query"] = []float32{1, 0}
	enc.vectors["nearly identical"] = []float32{0.95, 0.05}
	enc.vectors["related"] = []float32{0.5, 0.5}
	enc.vectors["unrelated"] = []float32{0, 1}

	svc := newTestService(t, enc)
	defer svc.Close()

	t.Run("ranks by similarity", func(t *testing.T) {
		results, err := svc.FindSimilar(ctx, "query",
			[]string{"unrelated", "nearly identical", "related"}, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected top 2, got %d results", len(results))
		}
		if results[0].ID != "nearly identical" {
			t.Errorf("expected the closest candidate first, got %q", results[0].ID)
		}
		if results[1].ID != "related" {
			t.Errorf("expected the related candidate second, got %q", results[1].ID)
		}
		if results[0].Score < results[1].Score {
			t.Error("scores not in descending order")
		}
	})

	t.Run("topK clamps to candidate count", func(t *testing.T) {
		results, err := svc.FindSimilar(ctx, "query", []string{"related"}, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})

	t.Run("failed candidates are skipped", func(t *testing.T) {
		enc.fail["broken candidate"] = true

		results, err := svc.FindSimilar(ctx, "query",
			[]string{"broken candidate", "related"}, 5)
		if err != nil {
			t.Fatalf("expected candidate failures to be non-fatal, got %v", err)
		}
		if len(results) != 1 || results[0].ID != "related" {
			t.Errorf("expected only the embeddable candidate, got %v", results)
		}
	})

	t.Run("failing query is fatal", func(t *testing.T) {
		enc.fail["broken query"] = true

		if _, err := svc.FindSimilar(ctx, "broken query", []string{"related"}, 1); err == nil {
			t.Error("expected query embedding failure to be fatal")
		}
	})
}

func TestSaveLoadEmbeddings(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		svc := newTestService(t, newMockEncoder(3))
		defer svc.Close()

		vectors, err := svc.EmbedBatch(ctx, []string{"first", "second"})
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		path := filepath.Join(t.TempDir(), "embeddings.bin")
		if err := svc.SaveEmbeddings(path, vectors, []string{"first", "second"}); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, texts, err := svc.LoadEmbeddings(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(loaded) != 2 || len(texts) != 2 {
			t.Fatalf("expected 2 vectors and 2 texts, got %d and %d", len(loaded), len(texts))
		}
		if texts[0] != "first" || texts[1] != "second" {
			t.Errorf("unexpected texts: %v", texts)
		}
		for i := range vectors {
			for j := range vectors[i] {
				if loaded[i][j] != vectors[i][j] {
					t.Fatalf("vector %d differs after round trip", i)
				}
			}
		}
	})

	t.Run("no texts load as nil", func(t *testing.T) {
		svc := newTestService(t, newMockEncoder(3))
		defer svc.Close()

		vectors, _ := svc.EmbedBatch(ctx, []string{"a"})
		path := filepath.Join(t.TempDir(), "embeddings.bin")
		if err := svc.SaveEmbeddings(path, vectors, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		_, texts, err := svc.LoadEmbeddings(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if texts != nil {
			t.Errorf("expected nil texts, got %v", texts)
		}
	})

	t.Run("dimension mismatch on load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "embeddings.bin")

		saver := newTestService(t, newMockEncoder(3))
		defer saver.Close()
		vectors, _ := saver.EmbedBatch(ctx, []string{"a"})
		if err := saver.SaveEmbeddings(path, vectors, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loader := newTestService(t, newMockEncoder(4))
		defer loader.Close()
		if _, _, err := loader.LoadEmbeddings(path); !errors.Is(err, ErrModelMismatch) {
			t.Errorf("expected ErrModelMismatch, got %v", err)
		}
	})
}

func TestStatsLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMockEncoder(3))
	defer svc.Close()

	svc.EmbedText(ctx, "a")
	svc.EmbedText(ctx, "a")
	svc.EmbedText(ctx, "b")

	stats := svc.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 2 || stats.Embeddings != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TotalDuration <= 0 {
		t.Error("expected accumulated duration to be positive")
	}

	svc.ResetStats()
	if stats := svc.Stats(); stats.CacheHits != 0 || stats.CacheMisses != 0 || stats.Embeddings != 0 {
		t.Errorf("expected zeroed stats after reset, got %+v", stats)
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	enc := newMockEncoder(3)
	svc := newTestService(t, enc)
	defer svc.Close()

	svc.EmbedText(ctx, "a")
	svc.EmbedText(ctx, "b")

	if n, _ := svc.CacheLen(ctx); n != 2 {
		t.Errorf("expected 2 cached entries, got %d", n)
	}

	if err := svc.ClearCache(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if n, _ := svc.CacheLen(ctx); n != 0 {
		t.Errorf("expected empty cache, got %d entries", n)
	}

	svc.EmbedText(ctx, "a")
	if enc.callCount() != 3 {
		t.Errorf("expected recomputation after clear, got %d calls", enc.callCount())
	}
}

func TestEmbedDocument(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMockEncoder(3))
	defer svc.Close()

	t.Run("short text yields one chunk", func(t *testing.T) {
		out, err := svc.EmbedDocument(ctx, "a short document that fits in one chunk")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(out))
		}
		if out[0].Vector == nil {
			t.Error("expected the chunk to carry an embedding")
		}
		if out[0].Chunk.Index != 0 {
			t.Errorf("expected chunk index 0, got %d", out[0].Chunk.Index)
		}
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		if _, err := svc.EmbedDocument(ctx, ""); err == nil {
			t.Error("expected error for empty document")
		}
	})
}

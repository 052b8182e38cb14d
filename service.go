package embedkit

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/embedkit/embedkit/chunker"
	"github.com/embedkit/embedkit/collection"
	"github.com/embedkit/embedkit/options"
	"github.com/embedkit/embedkit/ranking"
	"github.com/embedkit/embedkit/types"
	"github.com/embedkit/embedkit/vector"
)

// Service is the embedding service facade. It composes an injected Encoder
// with a synchronized cache backend and a similarity ranker, and tracks
// aggregate statistics across operations.
//
// A Service is created with a backend and optionally an encoder; until an
// encoder is bound (at construction or via Initialize), every embedding
// operation fails with ErrNotInitialized. Binding is one-way: the encoder
// cannot be replaced afterward. All methods are safe for concurrent use.
type Service struct {
	backend        types.CacheBackend
	ranker         *ranking.Ranker
	logger         *zap.Logger
	batchThreshold int
	workers        int

	chunkCfg  chunker.ChunkConfig
	chunkOnce sync.Once
	chunk     chunker.Chunker
	chunkErr  error

	encMu   sync.RWMutex
	encoder Encoder

	stats counters
}

// New creates a Service with functional options. A cache backend is
// required; an encoder may be bound now (options.WithEncoder and friends)
// or later via Initialize.
func New(opts ...options.Option) (*Service, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	threshold := cfg.BatchThreshold
	if threshold <= 0 {
		threshold = DefaultBatchThreshold
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		backend:        cfg.Backend,
		ranker:         ranking.NewRanker(cfg.Comparator),
		logger:         logger,
		batchThreshold: threshold,
		workers:        workers,
		chunkCfg:       cfg.Chunking,
		encoder:        cfg.Encoder,
	}, nil
}

// Initialize binds the encoder. It may be called once, and only on a
// service constructed without one; a second binding fails with
// ErrAlreadyInitialized.
func (s *Service) Initialize(encoder Encoder) error {
	if encoder == nil {
		return errors.New("embedkit: encoder cannot be nil")
	}

	s.encMu.Lock()
	defer s.encMu.Unlock()

	if s.encoder != nil {
		return ErrAlreadyInitialized
	}
	s.encoder = encoder
	return nil
}

// initialized returns the bound encoder or ErrNotInitialized.
func (s *Service) initialized() (Encoder, error) {
	s.encMu.RLock()
	defer s.encMu.RUnlock()

	if s.encoder == nil {
		return nil, ErrNotInitialized
	}
	return s.encoder, nil
}

// EmbedText returns the embedding for text, serving from the cache when
// possible. On a miss it invokes the encoder, normalizes the result to unit
// length, and stores it. This is the only write path into the cache.
func (s *Service) EmbedText(ctx context.Context, text string) ([]float32, error) {
	enc, err := s.initialized()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		s.stats.durationNanos.Add(time.Since(start).Nanoseconds())
	}()

	cached, found, err := s.backend.Get(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %q: %w", text, err)
	}
	if found {
		s.stats.hits.Add(1)
		s.stats.embeddings.Add(1)
		s.logger.Debug("embedding cache hit", zap.String("text", text))
		return cached, nil
	}
	s.stats.misses.Add(1)

	embedding, err := enc.EmbedText(text)
	if err != nil {
		return nil, fmt.Errorf("embed %q: %w", text, err)
	}
	embedding = vector.Normalize(embedding)

	if err := s.backend.Set(ctx, text, embedding); err != nil {
		return nil, fmt.Errorf("cache insert for %q: %w", text, err)
	}
	s.stats.embeddings.Add(1)
	s.logger.Debug("embedding computed", zap.String("text", text), zap.Int("dimension", len(embedding)))
	return embedding, nil
}

// EmbedBatch embeds texts through the cache. Results are positional:
// out[i] corresponds to texts[i]. Per-item failures do not abort the batch;
// failed positions are nil and all failures are joined into the returned
// error.
//
// Batches larger than the configured threshold fan out over the worker
// pool; smaller batches run sequentially. Embedding is a pure function of
// text and cache state, so both paths yield the same vectors for a
// deterministic encoder.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if _, err := s.initialized(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	fanOut(len(texts), s.batchThreshold, s.workers, func(i int) {
		embedding, err := s.EmbedText(ctx, texts[i])
		if err != nil {
			errs[i] = err
			return
		}
		out[i] = embedding
	})

	return out, errors.Join(errs...)
}

// ChunkEmbedding pairs a document chunk with its embedding.
type ChunkEmbedding struct {
	Chunk  chunker.Chunk
	Vector []float32
}

// EmbedDocument splits a long text into token-bounded chunks and embeds
// each chunk through the cache. Unlike EmbedBatch, a failed chunk fails the
// whole document: partial document embeddings are not useful.
func (s *Service) EmbedDocument(ctx context.Context, text string) ([]ChunkEmbedding, error) {
	if _, err := s.initialized(); err != nil {
		return nil, err
	}

	ck, err := s.chunker()
	if err != nil {
		return nil, err
	}

	chunks, err := ck.ChunkText(text)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := s.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed document: %w", err)
	}

	out := make([]ChunkEmbedding, len(chunks))
	for i := range chunks {
		out[i] = ChunkEmbedding{Chunk: chunks[i], Vector: embeddings[i]}
	}
	return out, nil
}

func (s *Service) chunker() (chunker.Chunker, error) {
	s.chunkOnce.Do(func() {
		s.chunk, s.chunkErr = chunker.NewFixedOverlapChunker(s.chunkCfg)
	})
	return s.chunk, s.chunkErr
}

// FindSimilar embeds the query and every candidate (reusing the cache),
// ranks candidates by similarity to the query, and returns the top k
// results. Candidates that fail to embed are skipped, not fatal; the count
// of skipped candidates is logged.
func (s *Service) FindSimilar(ctx context.Context, query string, candidates []string, topK int) ([]ranking.Result, error) {
	if _, err := s.initialized(); err != nil {
		return nil, err
	}

	queryVec, err := s.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vecs, batchErr := s.EmbedBatch(ctx, candidates)

	embedded := make([]ranking.Candidate, 0, len(candidates))
	for i, vec := range vecs {
		if vec == nil {
			continue
		}
		embedded = append(embedded, ranking.Candidate{ID: candidates[i], Vector: vec})
	}

	if skipped := len(candidates) - len(embedded); skipped > 0 {
		s.logger.Warn("skipped candidates that failed to embed",
			zap.Int("skipped", skipped),
			zap.Int("total", len(candidates)),
			zap.Error(batchErr))
	}

	ranked := s.ranker.Rank(queryVec, embedded)
	return ranking.TopK(ranked, topK), nil
}

// SaveEmbeddings persists vectors (with optional parallel source texts) to
// path as an embedding collection stamped with the encoder's model name,
// version, and dimension.
func (s *Service) SaveEmbeddings(path string, vectors [][]float32, texts []string) error {
	enc, err := s.initialized()
	if err != nil {
		return err
	}

	col, err := collection.New(enc.ModelName(), enc.ModelVersion(), int32(enc.Dimension()), vectors, texts)
	if err != nil {
		return err
	}
	return collection.WriteFile(path, col)
}

// LoadEmbeddings reads an embedding collection from path. The collection's
// declared dimension must match the bound encoder's; a disagreement fails
// with ErrModelMismatch rather than silently operating on incompatible
// vectors. texts is nil when no record in the collection carries text.
func (s *Service) LoadEmbeddings(path string) (vectors [][]float32, texts []string, err error) {
	enc, err := s.initialized()
	if err != nil {
		return nil, nil, err
	}

	col, err := collection.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	if int(col.Dimension) != enc.Dimension() {
		return nil, nil, fmt.Errorf("%w: collection %q has dimension %d, encoder %q expects %d",
			ErrModelMismatch, col.ModelName, col.Dimension, enc.ModelName(), enc.Dimension())
	}
	if col.ModelName != enc.ModelName() {
		s.logger.Warn("loading collection produced by a different model",
			zap.String("collection_model", col.ModelName),
			zap.String("encoder_model", enc.ModelName()))
	}

	return col.Vectors(), col.Texts(), nil
}

// Stats returns a snapshot of the aggregate counters.
func (s *Service) Stats() Stats {
	return s.stats.snapshot()
}

// ResetStats zeroes all counters.
func (s *Service) ResetStats() {
	s.stats.reset()
}

// ClearCache removes all cached embeddings. Capacity is unchanged.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.backend.Flush(ctx)
}

// CacheLen returns the number of cached embeddings.
func (s *Service) CacheLen(ctx context.Context) (int, error) {
	return s.backend.Len(ctx)
}

// Close releases the backend and, when bound, the encoder.
func (s *Service) Close() error {
	s.encMu.RLock()
	enc := s.encoder
	s.encMu.RUnlock()

	if enc != nil {
		enc.Close()
	}
	return s.backend.Close()
}

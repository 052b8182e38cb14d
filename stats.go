package embedkit

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of the service's aggregate counters.
// Counters only grow; they reset solely through an explicit ResetStats.
type Stats struct {
	// Embeddings is the number of texts served through EmbedText,
	// whether from cache or freshly computed.
	Embeddings uint64 `json:"embeddings"`
	// CacheHits counts lookups satisfied from the cache.
	CacheHits uint64 `json:"cache_hits"`
	// CacheMisses counts lookups that required the external encoder.
	CacheMisses uint64 `json:"cache_misses"`
	// TotalDuration is the accumulated wall time spent in EmbedText.
	TotalDuration time.Duration `json:"total_duration"`
}

// counters is the live, concurrently-updated form of Stats. Atomic fields
// keep updates lossless under parallel batch embedding without sharing the
// cache lock.
type counters struct {
	embeddings    atomic.Uint64
	hits          atomic.Uint64
	misses        atomic.Uint64
	durationNanos atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Embeddings:    c.embeddings.Load(),
		CacheHits:     c.hits.Load(),
		CacheMisses:   c.misses.Load(),
		TotalDuration: time.Duration(c.durationNanos.Load()),
	}
}

func (c *counters) reset() {
	c.embeddings.Store(0)
	c.hits.Store(0)
	c.misses.Store(0)
	c.durationNanos.Store(0)
}

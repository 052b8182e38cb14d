// Package embedkit caches, compares, ranks, and persists text embeddings
// produced by an injected encoder.
package embedkit

import "github.com/embedkit/embedkit/types"

// Encoder is the contract for the external text-to-vector model. The
// canonical definition lives in the types package so that options and
// providers can share it; this alias keeps the public surface at the root.
type Encoder = types.Encoder

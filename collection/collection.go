// Package collection models a named, versioned batch of embedding records
// and its persistent binary format.
//
// The on-disk encoding is protobuf wire format, equivalent to:
//
//	message EmbeddingRecord {
//	    repeated float values   = 1;
//	    string         text      = 2;
//	    int64          timestamp = 3;
//	}
//	message EmbeddingCollection {
//	    repeated EmbeddingRecord embeddings    = 1;
//	    string                   model_name    = 2;
//	    string                   model_version = 3;
//	    int32                    dimension     = 4;
//	}
//
// Unknown fields are skipped on decode, so files written by newer versions
// of this package remain loadable.
package collection

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMalformedData indicates truncated or corrupt encoded input.
	ErrMalformedData = errors.New("collection: malformed data")

	// ErrDimensionInconsistency indicates a record whose vector length
	// disagrees with the collection's declared dimension.
	ErrDimensionInconsistency = errors.New("collection: dimension inconsistency")
)

// Record is a single persisted embedding: the vector values, the source
// text that produced it (optional, may be empty), and a creation timestamp
// in epoch seconds.
type Record struct {
	Values    []float32
	Text      string
	Timestamp int64
}

// Collection is an ordered batch of embedding records tagged with model
// provenance. Every record's vector length must equal Dimension.
type Collection struct {
	Records      []Record
	ModelName    string
	ModelVersion string
	Dimension    int32
}

// New builds a Collection from parallel vectors and texts, stamping every
// record with the same current epoch-seconds timestamp. texts may be nil;
// when shorter than vectors, the remaining records carry empty text.
// Returns ErrDimensionInconsistency if any vector length differs from
// dimension.
func New(modelName, modelVersion string, dimension int32, vectors [][]float32, texts []string) (*Collection, error) {
	now := time.Now().Unix()

	c := &Collection{
		Records:      make([]Record, 0, len(vectors)),
		ModelName:    modelName,
		ModelVersion: modelVersion,
		Dimension:    dimension,
	}

	for i, vec := range vectors {
		if int32(len(vec)) != dimension {
			return nil, fmt.Errorf("%w: record %d has %d values, collection dimension is %d",
				ErrDimensionInconsistency, i, len(vec), dimension)
		}
		var text string
		if i < len(texts) {
			text = texts[i]
		}
		c.Records = append(c.Records, Record{Values: vec, Text: text, Timestamp: now})
	}

	return c, nil
}

// Validate checks that every record's vector length matches the declared
// dimension.
func (c *Collection) Validate() error {
	for i, rec := range c.Records {
		if int32(len(rec.Values)) != c.Dimension {
			return fmt.Errorf("%w: record %d has %d values, collection dimension is %d",
				ErrDimensionInconsistency, i, len(rec.Values), c.Dimension)
		}
	}
	return nil
}

// Vectors returns the record vectors in order.
func (c *Collection) Vectors() [][]float32 {
	vectors := make([][]float32, len(c.Records))
	for i, rec := range c.Records {
		vectors[i] = rec.Values
	}
	return vectors
}

// Texts returns the record texts in order, or nil when no record carries a
// non-empty text. When at least one record has text, the slice has one
// element per record with empty-string placeholders for the records that
// lack it.
func (c *Collection) Texts() []string {
	hasTexts := false
	for _, rec := range c.Records {
		if rec.Text != "" {
			hasTexts = true
			break
		}
	}
	if !hasTexts {
		return nil
	}

	texts := make([]string, len(c.Records))
	for i, rec := range c.Records {
		texts[i] = rec.Text
	}
	return texts
}

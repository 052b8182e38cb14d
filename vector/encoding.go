package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeBlob encodes a float32 vector into a BLOB suitable for storage in
// SQLite. The encoding is a little-endian sequence of IEEE 754 float32
// values without a length prefix; the length is derived from the BLOB size
// on decode.
func EncodeBlob(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// DecodeBlob decodes a BLOB produced by EncodeBlob back into a float32 vector.
func DecodeBlob(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

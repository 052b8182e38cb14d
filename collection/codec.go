package collection

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers for the EmbeddingCollection message.
const (
	collectionFieldRecords      = 1
	collectionFieldModelName    = 2
	collectionFieldModelVersion = 3
	collectionFieldDimension    = 4
)

// Field numbers for the EmbeddingRecord message.
const (
	recordFieldValues    = 1
	recordFieldText      = 2
	recordFieldTimestamp = 3
)

// Marshal encodes the collection into protobuf wire format. Fields are
// written in field-number order, so equivalent collections encode to
// identical bytes.
func Marshal(c *Collection) []byte {
	var buf []byte

	for _, rec := range c.Records {
		buf = protowire.AppendTag(buf, collectionFieldRecords, protowire.BytesType)
		buf = protowire.AppendBytes(buf, marshalRecord(rec))
	}
	if c.ModelName != "" {
		buf = protowire.AppendTag(buf, collectionFieldModelName, protowire.BytesType)
		buf = protowire.AppendString(buf, c.ModelName)
	}
	if c.ModelVersion != "" {
		buf = protowire.AppendTag(buf, collectionFieldModelVersion, protowire.BytesType)
		buf = protowire.AppendString(buf, c.ModelVersion)
	}
	if c.Dimension != 0 {
		buf = protowire.AppendTag(buf, collectionFieldDimension, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(uint32(c.Dimension)))
	}

	return buf
}

func marshalRecord(rec Record) []byte {
	var buf []byte

	if len(rec.Values) > 0 {
		// Packed repeated float.
		packed := make([]byte, 0, len(rec.Values)*4)
		for _, v := range rec.Values {
			packed = protowire.AppendFixed32(packed, math.Float32bits(v))
		}
		buf = protowire.AppendTag(buf, recordFieldValues, protowire.BytesType)
		buf = protowire.AppendBytes(buf, packed)
	}
	if rec.Text != "" {
		buf = protowire.AppendTag(buf, recordFieldText, protowire.BytesType)
		buf = protowire.AppendString(buf, rec.Text)
	}
	if rec.Timestamp != 0 {
		buf = protowire.AppendTag(buf, recordFieldTimestamp, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(rec.Timestamp))
	}

	return buf
}

// Unmarshal decodes a collection from protobuf wire format. It returns
// ErrMalformedData for truncated or corrupt input, and
// ErrDimensionInconsistency when a record's vector length disagrees with
// the declared dimension. Unknown fields are skipped.
func Unmarshal(data []byte) (*Collection, error) {
	c := &Collection{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == collectionFieldRecords && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			rec, err := unmarshalRecord(raw)
			if err != nil {
				return nil, err
			}
			c.Records = append(c.Records, rec)
		case num == collectionFieldModelName && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			c.ModelName = s
		case num == collectionFieldModelVersion && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			c.ModelVersion = s
		case num == collectionFieldDimension && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			c.Dimension = int32(v)
		default:
			// Unknown or future field: skip for forward compatibility.
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func unmarshalRecord(data []byte) (Record, error) {
	var rec Record

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return rec, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == recordFieldValues && typ == protowire.BytesType:
			// Packed repeated float.
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return rec, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			if len(packed)%4 != 0 {
				return rec, fmt.Errorf("%w: packed float payload of %d bytes", ErrMalformedData, len(packed))
			}
			for len(packed) > 0 {
				bits, n := protowire.ConsumeFixed32(packed)
				if n < 0 {
					return rec, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
				}
				packed = packed[n:]
				rec.Values = append(rec.Values, math.Float32frombits(bits))
			}
		case num == recordFieldValues && typ == protowire.Fixed32Type:
			// Unpacked encoding of the same field.
			bits, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return rec, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			rec.Values = append(rec.Values, math.Float32frombits(bits))
		case num == recordFieldText && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return rec, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			rec.Text = s
		case num == recordFieldTimestamp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return rec, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
			rec.Timestamp = int64(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return rec, fmt.Errorf("%w: %v", ErrMalformedData, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return rec, nil
}

// WriteFile encodes the collection and writes it to path.
func WriteFile(path string, c *Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return os.WriteFile(path, Marshal(c), 0o644)
}

// ReadFile reads and decodes a collection from path.
func ReadFile(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

package chunker

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// FixedOverlapChunker implements the Chunker interface using a fixed-size
// chunking strategy with overlap between chunks.
type FixedOverlapChunker struct {
	config   ChunkConfig
	encoding tokenizer.Codec
}

// NewFixedOverlapChunker creates a new FixedOverlapChunker with the given configuration.
// It uses tiktoken's cl100k_base encoding (used by OpenAI's embedding models).
func NewFixedOverlapChunker(config ChunkConfig) (*FixedOverlapChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}

	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}

	return &FixedOverlapChunker{
		config:   config,
		encoding: enc,
	}, nil
}

// CountTokens counts the number of tokens in the given text.
func (c *FixedOverlapChunker) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	ids, _, err := c.encoding.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}

	return len(ids), nil
}

// ChunkText splits the text into overlapping chunks based on token count.
func (c *FixedOverlapChunker) ChunkText(text string) ([]Chunk, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	tokens, _, err := c.encoding.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}

	totalTokens := len(tokens)

	// Text that fits in a single chunk is returned as-is.
	if totalTokens <= c.config.ChunkSize {
		return []Chunk{
			{
				Text:       text,
				StartToken: 0,
				EndToken:   totalTokens,
				Index:      0,
			},
		}, nil
	}

	step := c.config.ChunkSize - c.config.ChunkOverlap
	chunks := make([]Chunk, 0, (totalTokens+step-1)/step)

	for start := 0; start < totalTokens; start += step {
		end := start + c.config.ChunkSize
		if end > totalTokens {
			end = totalTokens
		}

		chunkText, err := c.encoding.Decode(tokens[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
		}

		chunks = append(chunks, Chunk{
			Text:       chunkText,
			StartToken: start,
			EndToken:   end,
			Index:      len(chunks),
		})

		if end == totalTokens {
			break
		}
	}

	return chunks, nil
}

var _ Chunker = (*FixedOverlapChunker)(nil)

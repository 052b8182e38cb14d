package tokenizer

import (
	"context"

	"github.com/tiktoken-go/tokenizer"
)

// OpenAITokenizer counts tokens locally using tiktoken's cl100k_base
// encoding (used by OpenAI's embedding models). No API call is made.
type OpenAITokenizer struct{}

// NewOpenAITokenizer creates a new OpenAITokenizer.
func NewOpenAITokenizer() *OpenAITokenizer {
	return &OpenAITokenizer{}
}

// CountTokens counts tokens in text using tiktoken.
func (t *OpenAITokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return 0, err
	}

	ids, _, err := enc.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

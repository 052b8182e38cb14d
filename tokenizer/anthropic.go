package tokenizer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicTokenizer counts tokens via Anthropic's token counting endpoint.
// This makes an API call; prefer the local OpenAI tokenizer when an
// approximate count is acceptable.
type AnthropicTokenizer struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicTokenizer creates a new AnthropicTokenizer with the provided
// client. An empty model falls back to a current default.
func NewAnthropicTokenizer(client *anthropic.Client, model string) *AnthropicTokenizer {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &AnthropicTokenizer{
		client: client,
		model:  model,
	}
}

// CountTokens counts tokens in text using the native Anthropic SDK.
func (t *AnthropicTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	if t.client == nil {
		return 0, fmt.Errorf("anthropic client is required for token counting")
	}

	params := anthropic.MessageCountTokensParams{
		Model: anthropic.Model(t.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	result, err := t.client.Messages.CountTokens(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("anthropic token counting failed: %w", err)
	}

	return int(result.InputTokens), nil
}

package tokenizer

import (
	"context"
	"testing"
)

func TestOpenAITokenizer(t *testing.T) {
	ctx := context.Background()
	tok := NewOpenAITokenizer()

	n, err := tok.CountTokens(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", n)
	}

	n, err = tok.CountTokens(ctx, "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 {
		t.Error("expected a positive token count")
	}

	longer, err := tok.CountTokens(ctx, "hello world hello world hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if longer <= n {
		t.Errorf("expected more tokens for longer text: %d vs %d", longer, n)
	}
}

// Package tokenizer counts tokens in plain text for the supported model
// vendors, for sizing inputs before they are sent to an embedding endpoint.
package tokenizer

import "context"

// Counter counts the tokens a model vendor would charge for a piece of text.
type Counter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

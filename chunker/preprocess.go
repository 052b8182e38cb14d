package chunker

import "strings"

// Preprocess prepares text for embedding: trims surrounding whitespace,
// lowercases, and collapses internal whitespace runs to single spaces.
func Preprocess(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}

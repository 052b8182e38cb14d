// Package providers exposes constructors for the bundled embedding encoders.
package providers

import (
	"google.golang.org/genai"

	"github.com/embedkit/embedkit/providers/gemini"
	"github.com/embedkit/embedkit/providers/openai"
	"github.com/embedkit/embedkit/types"
)

// NewOpenAIEncoder creates a new OpenAI encoder.
func NewOpenAIEncoder(config openai.Config) (types.Encoder, error) {
	return openai.NewEncoder(config)
}

// NewGeminiEncoder creates a new Gemini encoder.
func NewGeminiEncoder(client *genai.Client, config gemini.Config) (types.Encoder, error) {
	return gemini.NewEncoder(client, config)
}

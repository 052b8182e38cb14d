package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/embedkit/embedkit/types"
)

const (
	DefaultModel        = "text-embedding-004"
	DefaultModelVersion = "v1"
	defaultDimension    = 768
)

// Encoder wraps a genai.Client to embed text with a Gemini embedding model.
type Encoder struct {
	client    *genai.Client
	model     string
	version   string
	dimension int
}

// Config provides configuration options for the Gemini encoder.
type Config struct {
	Model        string
	ModelVersion string
	Dimension    int
}

// NewEncoder creates an embedding encoder backed by the provided client.
func NewEncoder(client *genai.Client, config Config) (*Encoder, error) {
	if client == nil {
		return nil, errors.New("gemini client is required")
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	version := config.ModelVersion
	if version == "" {
		version = DefaultModelVersion
	}

	dimension := config.Dimension
	if dimension == 0 {
		dimension = defaultDimension
	}

	return &Encoder{client: client, model: model, version: version, dimension: dimension}, nil
}

// EmbedText sends the embedding request to the Gemini embeddings endpoint.
func (e *Encoder) EmbedText(text string) ([]float32, error) {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: text},
			},
		},
	}

	result, err := e.client.Models.EmbedContent(context.Background(), e.model, contents, &genai.EmbedContentConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, errors.New("no embeddings returned by Gemini")
	}
	if len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("empty embedding vector returned by Gemini")
	}

	return result.Embeddings[0].Values, nil
}

// ModelName returns the configured embedding model.
func (e *Encoder) ModelName() string { return e.model }

// ModelVersion returns the configured model revision.
func (e *Encoder) ModelVersion() string { return e.version }

// Dimension returns the vector length produced by the model.
func (e *Encoder) Dimension() int { return e.dimension }

func (e *Encoder) Close() {}

var _ types.Encoder = (*Encoder)(nil)

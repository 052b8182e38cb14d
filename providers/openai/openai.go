package openai

import (
	"context"
	"errors"
	"os"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/embedkit/embedkit/types"
)

const (
	DefaultModel        = string(openai.EmbeddingModelTextEmbedding3Small)
	DefaultModelVersion = "v1"
)

// defaultDimensions maps known embedding models to their vector length.
var defaultDimensions = map[string]int{
	string(openai.EmbeddingModelTextEmbedding3Small): 1536,
	string(openai.EmbeddingModelTextEmbedding3Large): 3072,
	string(openai.EmbeddingModelTextEmbeddingAda002): 1536,
}

// Encoder uses OpenAI's API to embed text.
type Encoder struct {
	client    *openai.Client
	model     string
	version   string
	dimension int
}

// Config provides configuration options for the OpenAI encoder.
type Config struct {
	APIKey       string
	BaseURL      string
	OrgID        string
	Model        string
	ModelVersion string
	// Dimension overrides the model's default vector length. Required for
	// models not known to this package.
	Dimension int
}

// NewEncoder creates an embedding encoder for OpenAI.
func NewEncoder(config Config) (*Encoder, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OpenAI API key is required")
		}
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
		dimension = defaultDimensions[model]
	}
	if dimension == 0 {
		return nil, errors.New("dimension is required for model " + model)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	client := openai.NewClient(opts...)
	return &Encoder{client: &client, model: model, version: version, dimension: dimension}, nil
}

// EmbedText sends the embedding request to OpenAI.
func (e *Encoder) EmbedText(text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(context.Background(), openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned by OpenAI")
	}
	// OpenAI returns []float64; convert to []float32
	embeddingF64 := resp.Data[0].Embedding
	embeddingF32 := make([]float32, len(embeddingF64))
	for i, v := range embeddingF64 {
		embeddingF32[i] = float32(v)
	}
	return embeddingF32, nil
}

// ModelName returns the configured embedding model.
func (e *Encoder) ModelName() string { return e.model }

// ModelVersion returns the configured model revision.
func (e *Encoder) ModelVersion() string { return e.version }

// Dimension returns the vector length produced by the model.
func (e *Encoder) Dimension() int { return e.dimension }

func (e *Encoder) Close() {}

var _ types.Encoder = (*Encoder)(nil)

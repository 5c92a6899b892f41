package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// chainEmbedder wraps a langchaingo embedder with dimension validation.
type chainEmbedder struct {
	model     embeddings.Embedder
	modelName string
	dimension int
}

// Embed generates an embedding vector for the given text.
// Returns an exactly dimension-sized float32 vector or an error.
func (e *chainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}

	vectors, err := e.model.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	embedding := vectors[0]
	if len(embedding) != e.dimension {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d (model: %s)",
			len(embedding), e.dimension, e.modelName)
	}
	return embedding, nil
}

// Model returns the configured embedding model name.
func (e *chainEmbedder) Model() string {
	return e.modelName
}

// Dimension returns the expected embedding dimension.
func (e *chainEmbedder) Dimension() int {
	return e.dimension
}

// NewOpenAI creates an embedder backed by the OpenAI embeddings API.
// baseURL overrides the API endpoint when non-empty (for proxies and
// OpenAI-compatible servers).
func NewOpenAI(apiKey, baseURL, model string, dimension int) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider requires API key")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}

	return &chainEmbedder{
		model:     embedder,
		modelName: model,
		dimension: dimension,
	}, nil
}

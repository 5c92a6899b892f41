// Package embedding provides text embedding generation with multiple
// backend support.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkorchagin/finmcp-go/internal/config"
)

// ErrBlankInput is returned when an embedding is requested for empty or
// whitespace-only text. Providers fail explicitly rather than returning a
// degenerate vector.
var ErrBlankInput = errors.New("cannot embed blank text")

// Embedder defines the interface for text embedding providers.
// Implementations include OpenAI, local Ollama, and Amazon Bedrock.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	// Fails explicitly on blank input, provider error, or dimension mismatch.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the name of the embedding model being used.
	Model() string

	// Dimension returns the embedding vector dimension.
	// Must match the vector column dimension in the store schema.
	Dimension() int
}

// New creates an Embedder based on the provided configuration.
func New(cfg config.Config) (Embedder, error) {
	switch cfg.EmbedProvider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbedModel, cfg.EmbedDimension)

	case config.ProviderOllama:
		return NewOllama(cfg.OllamaHost, cfg.EmbedModel, cfg.EmbedDimension)

	case config.ProviderBedrock:
		return NewBedrock(context.Background(), cfg.EmbedModel, cfg.EmbedDimension)

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbedProvider)
	}
}

// MaybeEmbed embeds optional text. Absent or whitespace-only text skips
// embedding entirely and returns (nil, nil), so the stored vector stays null.
func MaybeEmbed(ctx context.Context, e Embedder, text *string) ([]float32, error) {
	if text == nil || strings.TrimSpace(*text) == "" {
		return nil, nil
	}
	return e.Embed(ctx, *text)
}

// checkInput rejects blank text before any provider call is made.
func checkInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrBlankInput
	}
	return nil
}

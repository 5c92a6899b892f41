package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mkorchagin/finmcp-go/internal/config"
	"github.com/mkorchagin/finmcp-go/internal/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder records calls and returns a fixed vector.
type fakeEmbedder struct {
	vector []float32
	err    error
	calls  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Model() string  { return "fake" }
func (f *fakeEmbedder) Dimension() int { return len(f.vector) }

func TestMaybeEmbedSkipsAbsentText(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{0.1}}

	vec, err := embedding.MaybeEmbed(context.Background(), fake, nil)
	require.NoError(t, err)
	assert.Nil(t, vec)
	assert.Empty(t, fake.calls, "embedder must not be called for absent text")
}

func TestMaybeEmbedSkipsBlankText(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{0.1}}
	blank := "   \t"

	vec, err := embedding.MaybeEmbed(context.Background(), fake, &blank)
	require.NoError(t, err)
	assert.Nil(t, vec)
	assert.Empty(t, fake.calls, "embedder must not be called for blank text")
}

func TestMaybeEmbedForwardsText(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{0.5, 0.25}}
	text := "bought coffee"

	vec, err := embedding.MaybeEmbed(context.Background(), fake, &text)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
	assert.Equal(t, []string{"bought coffee"}, fake.calls)
}

func TestMaybeEmbedPropagatesError(t *testing.T) {
	fake := &fakeEmbedder{err: errors.New("provider down")}
	text := "groceries"

	_, err := embedding.MaybeEmbed(context.Background(), fake, &text)
	assert.Error(t, err)
}

func TestOllamaRejectsBlankInput(t *testing.T) {
	client, err := embedding.NewOllama("http://localhost:11434", "nomic-embed-text", 768)
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, embedding.ErrBlankInput)
}

func TestNewOllamaMetadata(t *testing.T) {
	client, err := embedding.NewOllama("http://localhost:11434", "all-minilm:l6-v2", 384)
	require.NoError(t, err)
	assert.Equal(t, "all-minilm:l6-v2", client.Model())
	assert.Equal(t, 384, client.Dimension())
}

func TestNewRequiresOpenAIKey(t *testing.T) {
	cfg := config.Config{
		EmbedProvider:  config.ProviderOpenAI,
		EmbedModel:     "text-embedding-3-small",
		EmbedDimension: 1536,
	}
	_, err := embedding.New(cfg)
	assert.Error(t, err)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.Config{EmbedProvider: "voyage"}
	_, err := embedding.New(cfg)
	assert.Error(t, err)
}

package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitanRequestBody(t *testing.T) {
	body, err := titanRequestBody("coffee at the corner shop")
	require.NoError(t, err)
	assert.JSONEq(t, `{"inputText":"coffee at the corner shop"}`, string(body))
}

func TestParseTitanResponse(t *testing.T) {
	body := []byte(`{"embedding":[0.1,0.2,0.3],"inputTextTokenCount":6}`)

	vec, err := parseTitanResponse(body, 3, "amazon.titan-embed-text-v2:0")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestParseTitanResponseDimensionMismatch(t *testing.T) {
	body := []byte(`{"embedding":[0.1,0.2]}`)

	_, err := parseTitanResponse(body, 3, "amazon.titan-embed-text-v2:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestParseTitanResponseEmpty(t *testing.T) {
	_, err := parseTitanResponse([]byte(`{}`), 3, "amazon.titan-embed-text-v2:0")
	assert.Error(t, err)

	_, err = parseTitanResponse([]byte(`not json`), 3, "amazon.titan-embed-text-v2:0")
	assert.Error(t, err)
}

func TestBedrockMetadata(t *testing.T) {
	c := &BedrockClient{model: "amazon.titan-embed-text-v2:0", dimension: 1024}
	assert.Equal(t, "amazon.titan-embed-text-v2:0", c.Model())
	assert.Equal(t, 1024, c.Dimension())
}

package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockClient implements Embedder using Amazon Titan embedding models
// through the Bedrock runtime InvokeModel API.
type BedrockClient struct {
	client    *bedrockruntime.Client
	model     string
	dimension int
}

var _ Embedder = (*BedrockClient)(nil)

// titanEmbedRequest is the InvokeModel body for amazon.titan-embed-text
// models.
type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

// titanEmbedResponse is the InvokeModel response body. Titan also returns
// an inputTextTokenCount which we ignore.
type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewBedrock creates an embedder backed by Amazon Bedrock. Credentials and
// region come from the standard AWS config chain.
func NewBedrock(ctx context.Context, model string, dimension int) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &BedrockClient{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		model:     model,
		dimension: dimension,
	}, nil
}

// Model returns the configured embedding model name.
func (c *BedrockClient) Model() string {
	return c.model
}

// Dimension returns the expected embedding dimension.
func (c *BedrockClient) Dimension() int {
	return c.dimension
}

// Embed generates an embedding vector for the given text.
// Returns an exactly dimension-sized float32 vector or an error.
func (c *BedrockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}

	body, err := titanRequestBody(text)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	return parseTitanResponse(resp.Body, c.dimension, c.model)
}

// titanRequestBody encodes the Titan embed request payload.
func titanRequestBody(text string) ([]byte, error) {
	body, err := json.Marshal(titanEmbedRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}
	return body, nil
}

// parseTitanResponse decodes a Titan embed response and validates the
// vector dimension.
func parseTitanResponse(body []byte, dimension int, model string) ([]float32, error) {
	var resp titanEmbedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	if len(resp.Embedding) != dimension {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d (model: %s)",
			len(resp.Embedding), dimension, model)
	}
	return resp.Embedding, nil
}

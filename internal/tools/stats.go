package tools

import (
	"context"

	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatsInput defines the (empty) input schema for the stats tool.
type StatsInput struct{}

type statsResult struct {
	EmbedModel     string           `json:"embed_model"`
	EmbedDimension int              `json:"embed_dimension"`
	Runtime        metrics.Snapshot `json:"runtime"`
}

// NewStatsHandler creates the stats tool handler, reporting the embedding
// configuration and per-operation runtime counters.
func NewStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[StatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, any, error) {
		result := statsResult{
			EmbedModel:     deps.Embedder.Model(),
			EmbedDimension: deps.Embedder.Dimension(),
		}
		if deps.Metrics != nil {
			result.Runtime = deps.Metrics.GetSnapshot()
		}
		return JSONResult(result), nil, nil
	}
}

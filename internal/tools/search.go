package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultSearchLimit = 5
	minSearchLimit     = 1
	maxSearchLimit     = 25
)

// SearchSimilarInput defines the input schema for the two similarity
// search tools.
type SearchSimilarInput struct {
	Query string `json:"query" jsonschema:"required,Free text to search for"`
	Limit *int   `json:"limit,omitempty" jsonschema:"Max results; clamped to 1-25, default 5"`
}

type searchTransactionsResult struct {
	Matches []models.TransactionMatch `json:"matches"`
	Count   int                       `json:"count"`
}

type searchCategoriesResult struct {
	Matches []models.CategoryMatch `json:"matches"`
	Count   int                    `json:"count"`
}

// clampLimit resolves the effective result limit: absent means the
// default, out-of-range values are clamped instead of rejected.
func clampLimit(limit *int) int {
	if limit == nil {
		return defaultSearchLimit
	}
	if *limit < minSearchLimit {
		return minSearchLimit
	}
	if *limit > maxSearchLimit {
		return maxSearchLimit
	}
	return *limit
}

// embedQuery embeds the search query. Unlike writes, a search without a
// vector is meaningless, so any embedding failure is fatal here.
func embedQuery(ctx context.Context, deps *Dependencies, query string) ([]float32, *mcp.CallToolResult) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrorResult(KindInvalidArguments, "invalid search input",
			FieldError{Field: "query", Message: "must not be empty"})
	}

	embedCtx, cancel := deps.embedContext(ctx)
	defer cancel()
	start := time.Now()
	emb, err := deps.Embedder.Embed(embedCtx, query)
	deps.record(metrics.OpEmbed, start, err)
	if err != nil {
		deps.Logger.Error("query embedding failed", "error", err)
		return nil, ErrorResult(KindEmbeddingUnavailable, "failed to embed query: "+err.Error())
	}
	return emb, nil
}

// NewSearchTransactionsHandler creates the search_similar_transactions
// tool handler.
func NewSearchTransactionsHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchSimilarInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchSimilarInput) (
		*mcp.CallToolResult, any, error,
	) {
		emb, errResult := embedQuery(ctx, deps, input.Query)
		if errResult != nil {
			return errResult, nil, nil
		}

		storeCtx, cancel := deps.storeContext(ctx)
		defer cancel()
		start := time.Now()
		matches, err := deps.Store.SearchTransactions(storeCtx, emb, clampLimit(input.Limit))
		deps.record(metrics.OpStoreSearch, start, err)
		if err != nil {
			return StoreErrorResult(deps.Logger, "search_similar_transactions", err), nil, nil
		}

		deps.Logger.Info("transaction search completed", "results", len(matches))
		if matches == nil {
			matches = []models.TransactionMatch{}
		}
		return JSONResult(searchTransactionsResult{Matches: matches, Count: len(matches)}), nil, nil
	}
}

// NewSearchCategoriesHandler creates the search_similar_categories tool
// handler.
func NewSearchCategoriesHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchSimilarInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchSimilarInput) (
		*mcp.CallToolResult, any, error,
	) {
		emb, errResult := embedQuery(ctx, deps, input.Query)
		if errResult != nil {
			return errResult, nil, nil
		}

		storeCtx, cancel := deps.storeContext(ctx)
		defer cancel()
		start := time.Now()
		matches, err := deps.Store.SearchCategories(storeCtx, emb, clampLimit(input.Limit))
		deps.record(metrics.OpStoreSearch, start, err)
		if err != nil {
			return StoreErrorResult(deps.Logger, "search_similar_categories", err), nil, nil
		}

		deps.Logger.Info("category search completed", "results", len(matches))
		if matches == nil {
			matches = []models.CategoryMatch{}
		}
		return JSONResult(searchCategoriesResult{Matches: matches, Count: len(matches)}), nil, nil
	}
}

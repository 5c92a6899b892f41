package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
// Calls addressing a tool name outside this set are rejected by the SDK
// before any handler runs.
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Ping tool - liveness check
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Liveness check - responds with pong or echoes input",
	}, NewPingHandler(deps))

	// Write path
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_transaction",
		Description: "Insert a transaction row, automatically embedding the description.",
	}, NewCreateTransactionHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upsert_category",
		Description: "Create or update a category with embeddings for semantic search.",
	}, NewUpsertCategoryHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upsert_account",
		Description: "Create or update an account keyed by name+kind.",
	}, NewUpsertAccountHandler(deps))

	// Read path
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_similar_transactions",
		Description: "Semantic nearest-neighbor search over historical transactions.",
	}, NewSearchTransactionsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_similar_categories",
		Description: "Semantic search across categories by embedding query.",
	}, NewSearchCategoriesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_accounts",
		Description: "List accounts with optional filters by kind or name substring.",
	}, NewListAccountsHandler(deps))

	// Introspection
	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Report embedding configuration and runtime operation counters.",
	}, NewStatsHandler(deps))
}

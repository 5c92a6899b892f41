package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListAccountsInput defines the input schema for list_accounts.
type ListAccountsInput struct {
	Kind   *string `json:"kind,omitempty" jsonschema:"Filter by account kind: onchain or offchain"`
	Search *string `json:"search,omitempty" jsonschema:"Case-insensitive name substring filter"`
}

type listAccountsResult struct {
	Accounts []models.Account `json:"accounts"`
	Count    int              `json:"count"`
}

// NewListAccountsHandler creates the list_accounts tool handler.
func NewListAccountsHandler(deps *Dependencies) mcp.ToolHandlerFor[ListAccountsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListAccountsInput) (
		*mcp.CallToolResult, any, error,
	) {
		var filter models.AccountFilter
		if input.Kind != nil {
			kind, err := models.ParseAccountKind(*input.Kind)
			if err != nil {
				return ErrorResult(KindInvalidArguments, "invalid account filter",
					FieldError{Field: "kind", Message: err.Error()}), nil, nil
			}
			filter.Kind = &kind
		}
		if input.Search != nil {
			filter.Search = *input.Search
		}

		storeCtx, cancel := deps.storeContext(ctx)
		defer cancel()
		start := time.Now()
		accounts, err := deps.Store.ListAccounts(storeCtx, filter)
		deps.record(metrics.OpStoreList, start, err)
		if err != nil {
			return StoreErrorResult(deps.Logger, "list_accounts", err), nil, nil
		}

		if accounts == nil {
			accounts = []models.Account{}
		}
		return JSONResult(listAccountsResult{Accounts: accounts, Count: len(accounts)}), nil, nil
	}
}

// UpsertAccountInput defines the input schema for upsert_account.
type UpsertAccountInput struct {
	ID          *string        `json:"id,omitempty" jsonschema:"Explicit account ID to update; omit to address by name and kind"`
	Name        string         `json:"name" jsonschema:"required,Account name; unique together with kind"`
	Kind        string         `json:"kind" jsonschema:"required,One of onchain or offchain"`
	Currency    string         `json:"currency" jsonschema:"required,Primary currency of the account"`
	Network     *string        `json:"network,omitempty" jsonschema:"Blockchain network for onchain accounts"`
	Institution *string        `json:"institution,omitempty" jsonschema:"Bank or exchange name for offchain accounts"`
	Metadata    map[string]any `json:"metadata,omitempty" jsonschema:"Arbitrary key-value metadata"`
}

type upsertAccountResult struct {
	Account models.Account `json:"account"`
}

// NewUpsertAccountHandler creates the upsert_account tool handler.
// Accounts are keyed by (name, kind); no embedding is involved, account
// names are identifiers rather than search text.
func NewUpsertAccountHandler(deps *Dependencies) mcp.ToolHandlerFor[UpsertAccountInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpsertAccountInput) (
		*mcp.CallToolResult, any, error,
	) {
		var fieldErrs []FieldError
		if strings.TrimSpace(input.Name) == "" {
			fieldErrs = append(fieldErrs, FieldError{Field: "name", Message: "must not be empty"})
		}
		kind, err := models.ParseAccountKind(input.Kind)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: "kind", Message: err.Error()})
		}
		if strings.TrimSpace(input.Currency) == "" {
			fieldErrs = append(fieldErrs, FieldError{Field: "currency", Message: "must not be empty"})
		}
		if input.ID != nil && strings.TrimSpace(*input.ID) == "" {
			fieldErrs = append(fieldErrs, FieldError{Field: "id", Message: "must not be empty when present"})
		}
		if len(fieldErrs) > 0 {
			return ErrorResult(KindInvalidArguments, "invalid account input", fieldErrs...), nil, nil
		}

		upsert := models.AccountUpsert{
			Name:        input.Name,
			Kind:        kind,
			Currency:    input.Currency,
			Network:     input.Network,
			Institution: input.Institution,
			Metadata:    input.Metadata,
		}
		if input.ID != nil {
			upsert.ID = *input.ID
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		storeCtx, cancel := deps.storeContext(ctx)
		defer cancel()
		start := time.Now()
		account, err := deps.Store.UpsertAccount(storeCtx, upsert)
		deps.record(metrics.OpStoreWrite, start, err)
		if err != nil {
			return StoreErrorResult(deps.Logger, "upsert_account", err), nil, nil
		}

		deps.Logger.Info("account upserted", "id", account.ID, "name", account.Name, "kind", account.Kind)
		return JSONResult(upsertAccountResult{Account: *account}), nil, nil
	}
}

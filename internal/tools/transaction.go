package tools

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/mkorchagin/finmcp-go/internal/embedding"
	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CreateTransactionInput defines the input schema for create_transaction.
type CreateTransactionInput struct {
	AccountID   string         `json:"account_id" jsonschema:"required,ID of the owning account"`
	Amount      float64        `json:"amount" jsonschema:"required,Unsigned amount magnitude; must be greater than zero"`
	Currency    string         `json:"currency" jsonschema:"required,Currency code such as EUR or BTC"`
	Direction   string         `json:"direction" jsonschema:"required,One of income expense or transfer"`
	OccurredAt  string         `json:"occurred_at" jsonschema:"required,RFC 3339 timestamp of when the transaction happened"`
	Description *string        `json:"description,omitempty" jsonschema:"Free-text description; embedded for similarity search when present"`
	CategoryID  *string        `json:"category_id,omitempty" jsonschema:"Optional category ID"`
	RawSource   *string        `json:"raw_source,omitempty" jsonschema:"Raw import payload the row was derived from"`
	Metadata    map[string]any `json:"metadata,omitempty" jsonschema:"Arbitrary key-value metadata"`
}

type createTransactionResult struct {
	Transaction models.Transaction `json:"transaction"`
	Warnings    []Warning          `json:"warnings,omitempty"`
}

// validate checks all fields at once, before any I/O happens.
func (in CreateTransactionInput) validate() (models.NewTransaction, []FieldError) {
	var errs []FieldError
	var out models.NewTransaction

	if strings.TrimSpace(in.AccountID) == "" {
		errs = append(errs, FieldError{Field: "account_id", Message: "must not be empty"})
	}
	out.AccountID = in.AccountID

	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a finite number"})
	} else if in.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	out.Amount = in.Amount

	if strings.TrimSpace(in.Currency) == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "must not be empty"})
	}
	out.Currency = in.Currency

	direction, err := models.ParseDirection(in.Direction)
	if err != nil {
		errs = append(errs, FieldError{Field: "direction", Message: err.Error()})
	}
	out.Direction = direction

	occurredAt, err := time.Parse(time.RFC3339, in.OccurredAt)
	if err != nil {
		errs = append(errs, FieldError{Field: "occurred_at", Message: "must be an RFC 3339 timestamp"})
	}
	out.OccurredAt = occurredAt

	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) == "" {
		errs = append(errs, FieldError{Field: "category_id", Message: "must not be empty when present"})
	}
	out.CategoryID = in.CategoryID

	out.Description = in.Description
	out.RawSource = in.RawSource
	out.Metadata = in.Metadata
	return out, errs
}

// NewCreateTransactionHandler creates the create_transaction tool handler.
// The description embedding is best-effort: an embedding failure degrades
// the row to unsearchable instead of rejecting the write.
func NewCreateTransactionHandler(deps *Dependencies) mcp.ToolHandlerFor[CreateTransactionInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateTransactionInput) (
		*mcp.CallToolResult, any, error,
	) {
		tx, fieldErrs := input.validate()
		if len(fieldErrs) > 0 {
			return ErrorResult(KindInvalidArguments, "invalid transaction input", fieldErrs...), nil, nil
		}

		var warnings []Warning
		if input.Description != nil {
			embedCtx, cancel := deps.embedContext(ctx)
			start := time.Now()
			emb, err := embedding.MaybeEmbed(embedCtx, deps.Embedder, input.Description)
			cancel()
			deps.record(metrics.OpEmbed, start, err)
			if err != nil {
				deps.Logger.Warn("embedding failed, storing transaction without vector", "error", err)
				warnings = append(warnings, Warning{
					Kind:    KindEmbeddingUnavailable,
					Message: "description stored without embedding: " + err.Error(),
				})
			} else {
				tx.Embedding = emb
			}
		}

		// The client may have given up during the embed call; don't spend
		// a store write on an abandoned request.
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		storeCtx, cancel := deps.storeContext(ctx)
		defer cancel()
		start := time.Now()
		created, err := deps.Store.InsertTransaction(storeCtx, tx)
		deps.record(metrics.OpStoreWrite, start, err)
		if err != nil {
			return StoreErrorResult(deps.Logger, "create_transaction", err), nil, nil
		}

		deps.Logger.Info("transaction created",
			"id", created.ID,
			"account", created.AccountID,
			"embedded", len(tx.Embedding) > 0)

		return JSONResult(createTransactionResult{Transaction: *created, Warnings: warnings}), nil, nil
	}
}

package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// UpsertCategoryInput defines the input schema for upsert_category.
type UpsertCategoryInput struct {
	Name        string  `json:"name" jsonschema:"required,Unique category name"`
	Kind        *string `json:"kind,omitempty" jsonschema:"One of income expense or transfer; defaults to expense"`
	Description *string `json:"description,omitempty" jsonschema:"Free-text description; defaults to the name"`
}

type upsertCategoryResult struct {
	Category models.Category `json:"category"`
	Warnings []Warning       `json:"warnings,omitempty"`
}

// NewUpsertCategoryHandler creates the upsert_category tool handler.
// The embedding source is the description, falling back to the name, so
// every category normally ends up searchable. Re-upserting recomputes the
// embedding from the latest text.
func NewUpsertCategoryHandler(deps *Dependencies) mcp.ToolHandlerFor[UpsertCategoryInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input UpsertCategoryInput) (
		*mcp.CallToolResult, any, error,
	) {
		var fieldErrs []FieldError
		if strings.TrimSpace(input.Name) == "" {
			fieldErrs = append(fieldErrs, FieldError{Field: "name", Message: "must not be empty"})
		}

		kind := models.CategoryExpense
		if input.Kind != nil {
			parsed, err := models.ParseCategoryKind(*input.Kind)
			if err != nil {
				fieldErrs = append(fieldErrs, FieldError{Field: "kind", Message: err.Error()})
			} else {
				kind = parsed
			}
		}
		if len(fieldErrs) > 0 {
			return ErrorResult(KindInvalidArguments, "invalid category input", fieldErrs...), nil, nil
		}

		// A missing or blank description defaults to the name, so the
		// stored text and the embedding source always agree.
		description := input.Description
		if description == nil || strings.TrimSpace(*description) == "" {
			description = &input.Name
		}

		var warnings []Warning
		embedCtx, cancel := deps.embedContext(ctx)
		start := time.Now()
		emb, err := deps.Embedder.Embed(embedCtx, *description)
		cancel()
		deps.record(metrics.OpEmbed, start, err)
		if err != nil {
			deps.Logger.Warn("embedding failed, storing category without vector", "error", err)
			warnings = append(warnings, Warning{
				Kind:    KindEmbeddingUnavailable,
				Message: "category stored without embedding: " + err.Error(),
			})
			emb = nil
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		storeCtx, cancel := deps.storeContext(ctx)
		defer cancel()
		start = time.Now()
		category, err := deps.Store.UpsertCategory(storeCtx, models.CategoryUpsert{
			Name:        input.Name,
			Kind:        kind,
			Description: description,
			Embedding:   emb,
		})
		deps.record(metrics.OpStoreWrite, start, err)
		if err != nil {
			return StoreErrorResult(deps.Logger, "upsert_category", err), nil, nil
		}

		deps.Logger.Info("category upserted", "id", category.ID, "name", category.Name, "embedded", len(emb) > 0)
		return JSONResult(upsertCategoryResult{Category: *category, Warnings: warnings}), nil, nil
	}
}

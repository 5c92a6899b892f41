package tools

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mkorchagin/finmcp-go/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrorKind is the machine-readable error class carried in every error
// payload. Clients branch on the kind, not on message text.
type ErrorKind string

const (
	KindInvalidArguments     ErrorKind = "invalid_arguments"
	KindUnknownTool          ErrorKind = "unknown_tool"
	KindAccountNotFound      ErrorKind = "account_not_found"
	KindCategoryNotFound     ErrorKind = "category_not_found"
	KindEmbeddingUnavailable ErrorKind = "embedding_unavailable"
	KindStoreUnavailable     ErrorKind = "store_unavailable"
	KindConflictOnUpsertKey  ErrorKind = "conflict_on_upsert_key"
)

// FieldError names one invalid input field. A validation failure reports
// every bad field at once rather than stopping at the first.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Warning reports a non-fatal degradation inside an otherwise successful
// call, e.g. a write that persisted without its embedding.
type Warning struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

type errorPayload struct {
	ErrorKind   ErrorKind    `json:"error_kind"`
	Message     string       `json:"message"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
}

// ErrorResult creates a tool error result carrying the structured error
// payload as JSON text. Returns IsError=true so the LLM can see the error
// and self-correct.
func ErrorResult(kind ErrorKind, msg string, fieldErrors ...FieldError) *mcp.CallToolResult {
	payload := errorPayload{ErrorKind: kind, Message: msg, FieldErrors: fieldErrors}
	data, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
		IsError: true,
	}
}

// JSONResult creates a success result with the value marshaled as
// indented JSON text.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(KindStoreUnavailable, "failed to encode result: "+err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}
}

// TextResult creates a success result with plain text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// StoreErrorResult maps a store error onto the error taxonomy. Sentinel
// errors become their dedicated kinds; anything else is a store outage.
func StoreErrorResult(logger *slog.Logger, op string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		return ErrorResult(KindAccountNotFound, err.Error())
	case errors.Is(err, store.ErrCategoryNotFound):
		return ErrorResult(KindCategoryNotFound, err.Error())
	case errors.Is(err, store.ErrUpsertConflict):
		return ErrorResult(KindConflictOnUpsertKey, err.Error())
	default:
		logger.Error("store call failed", "op", op, "error", err)
		return ErrorResult(KindStoreUnavailable, "store unavailable: "+err.Error())
	}
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns a fixed vector or error and counts calls.
type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Model() string  { return "fake-model" }
func (f *fakeEmbedder) Dimension() int { return len(f.vector) }

// fakeStore implements store.Store with overridable functions and call
// counters, so tests can assert which dependency calls happened.
type fakeStore struct {
	insertTransaction func(context.Context, models.NewTransaction) (*models.Transaction, error)
	upsertCategory    func(context.Context, models.CategoryUpsert) (*models.Category, error)
	upsertAccount     func(context.Context, models.AccountUpsert) (*models.Account, error)
	listAccounts      func(context.Context, models.AccountFilter) ([]models.Account, error)
	searchTx          func(context.Context, []float32, int) ([]models.TransactionMatch, error)
	searchCat         func(context.Context, []float32, int) ([]models.CategoryMatch, error)

	writes   int
	searches int
	lists    int
}

func (f *fakeStore) InsertTransaction(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
	f.writes++
	if f.insertTransaction == nil {
		return nil, errors.New("unexpected InsertTransaction call")
	}
	return f.insertTransaction(ctx, in)
}

func (f *fakeStore) UpsertCategory(ctx context.Context, in models.CategoryUpsert) (*models.Category, error) {
	f.writes++
	if f.upsertCategory == nil {
		return nil, errors.New("unexpected UpsertCategory call")
	}
	return f.upsertCategory(ctx, in)
}

func (f *fakeStore) UpsertAccount(ctx context.Context, in models.AccountUpsert) (*models.Account, error) {
	f.writes++
	if f.upsertAccount == nil {
		return nil, errors.New("unexpected UpsertAccount call")
	}
	return f.upsertAccount(ctx, in)
}

func (f *fakeStore) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	f.lists++
	if f.listAccounts == nil {
		return nil, errors.New("unexpected ListAccounts call")
	}
	return f.listAccounts(ctx, filter)
}

func (f *fakeStore) SearchTransactions(ctx context.Context, emb []float32, limit int) ([]models.TransactionMatch, error) {
	f.searches++
	if f.searchTx == nil {
		return nil, errors.New("unexpected SearchTransactions call")
	}
	return f.searchTx(ctx, emb, limit)
}

func (f *fakeStore) SearchCategories(ctx context.Context, emb []float32, limit int) ([]models.CategoryMatch, error) {
	f.searches++
	if f.searchCat == nil {
		return nil, errors.New("unexpected SearchCategories call")
	}
	return f.searchCat(ctx, emb, limit)
}

func (f *fakeStore) InitSchema(ctx context.Context) error { return nil }
func (f *fakeStore) Close(ctx context.Context) error      { return nil }

func testDeps(st *fakeStore, emb *fakeEmbedder) *Dependencies {
	return &Dependencies{
		Store:        st,
		Embedder:     emb,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      metrics.NewCollector(),
		EmbedTimeout: 5 * time.Second,
		StoreTimeout: 5 * time.Second,
	}
}

// resultText extracts the text content of a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

// decodeResult unmarshals a success payload into out.
func decodeResult(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, res.IsError, "expected success, got error payload: %s", resultText(t, res))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), out))
}

// decodeError unmarshals an error payload and checks the kind.
func decodeError(t *testing.T, res *mcp.CallToolResult, wantKind ErrorKind) errorPayload {
	t.Helper()
	require.True(t, res.IsError, "expected error payload, got: %s", resultText(t, res))
	var payload errorPayload
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
	require.Equal(t, wantKind, payload.ErrorKind)
	return payload
}

func fieldNames(errs []FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

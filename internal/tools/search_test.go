package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"absent uses default", nil, 5},
		{"zero clamps up", intPtr(0), 1},
		{"negative clamps up", intPtr(-3), 1},
		{"in range passes through", intPtr(10), 10},
		{"over max clamps down", intPtr(100), 25},
		{"boundaries hold", intPtr(1), 1},
		{"max holds", intPtr(25), 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampLimit(tt.limit))
		})
	}
}

func TestSearchTransactions(t *testing.T) {
	var gotEmb []float32
	var gotLimit int
	st := &fakeStore{
		searchTx: func(ctx context.Context, emb []float32, limit int) ([]models.TransactionMatch, error) {
			gotEmb, gotLimit = emb, limit
			return []models.TransactionMatch{
				{Transaction: models.Transaction{ID: "tx-1"}, Distance: 0.1},
				{Transaction: models.Transaction{ID: "tx-2"}, Distance: 0.4},
			}, nil
		},
	}
	emb := &fakeEmbedder{vector: []float32{0.5, 0.5}}
	handler := NewSearchTransactionsHandler(testDeps(st, emb))

	res, _, err := handler(context.Background(), nil, SearchSimilarInput{Query: "coffee", Limit: intPtr(99)})
	require.NoError(t, err)

	var result searchTransactionsResult
	decodeResult(t, res, &result)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "tx-1", result.Matches[0].Transaction.ID)

	assert.Equal(t, []float32{0.5, 0.5}, gotEmb)
	assert.Equal(t, 25, gotLimit, "limit must be clamped before the store sees it")
}

func TestSearchTransactionsBlankQuery(t *testing.T) {
	st := &fakeStore{}
	emb := &fakeEmbedder{vector: []float32{1}}
	handler := NewSearchTransactionsHandler(testDeps(st, emb))

	res, _, err := handler(context.Background(), nil, SearchSimilarInput{Query: "   "})
	require.NoError(t, err)

	payload := decodeError(t, res, KindInvalidArguments)
	assert.Contains(t, fieldNames(payload.FieldErrors), "query")
	assert.Zero(t, emb.calls, "blank query must not reach the embedder")
	assert.Zero(t, st.searches)
}

func TestSearchEmbedFailureIsFatal(t *testing.T) {
	st := &fakeStore{}
	emb := &fakeEmbedder{err: errors.New("provider down")}

	res, _, err := NewSearchTransactionsHandler(testDeps(st, emb))(
		context.Background(), nil, SearchSimilarInput{Query: "coffee"})
	require.NoError(t, err)
	decodeError(t, res, KindEmbeddingUnavailable)
	assert.Zero(t, st.searches, "a search without a vector must not hit the store")

	res, _, err = NewSearchCategoriesHandler(testDeps(st, emb))(
		context.Background(), nil, SearchSimilarInput{Query: "food"})
	require.NoError(t, err)
	decodeError(t, res, KindEmbeddingUnavailable)
	assert.Zero(t, st.searches)
}

func TestSearchCategories(t *testing.T) {
	st := &fakeStore{
		searchCat: func(ctx context.Context, emb []float32, limit int) ([]models.CategoryMatch, error) {
			assert.Equal(t, 5, limit, "absent limit must default to 5")
			return []models.CategoryMatch{
				{Category: models.Category{ID: "cat-1", Name: "groceries"}, Distance: 0.2},
			}, nil
		},
	}
	handler := NewSearchCategoriesHandler(testDeps(st, &fakeEmbedder{vector: []float32{1}}))

	res, _, err := handler(context.Background(), nil, SearchSimilarInput{Query: "food"})
	require.NoError(t, err)

	var result searchCategoriesResult
	decodeResult(t, res, &result)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "groceries", result.Matches[0].Category.Name)
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	st := &fakeStore{
		searchTx: func(ctx context.Context, emb []float32, limit int) ([]models.TransactionMatch, error) {
			return nil, nil
		},
	}
	handler := NewSearchTransactionsHandler(testDeps(st, &fakeEmbedder{vector: []float32{1}}))

	res, _, err := handler(context.Background(), nil, SearchSimilarInput{Query: "nothing like this"})
	require.NoError(t, err)

	var result searchTransactionsResult
	decodeResult(t, res, &result)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Matches, "matches must encode as [] rather than null")
}

func TestSearchStoreFailure(t *testing.T) {
	st := &fakeStore{
		searchTx: func(ctx context.Context, emb []float32, limit int) ([]models.TransactionMatch, error) {
			return nil, errors.New("connection reset")
		},
	}
	handler := NewSearchTransactionsHandler(testDeps(st, &fakeEmbedder{vector: []float32{1}}))

	res, _, err := handler(context.Background(), nil, SearchSimilarInput{Query: "coffee"})
	require.NoError(t, err)
	decodeError(t, res, KindStoreUnavailable)
}

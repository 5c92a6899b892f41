package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/mkorchagin/finmcp-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTransactionInput() CreateTransactionInput {
	desc := "coffee at the corner cafe"
	return CreateTransactionInput{
		AccountID:   "acc-1",
		Amount:      3.5,
		Currency:    "EUR",
		Direction:   "expense",
		OccurredAt:  "2026-03-14T09:30:00Z",
		Description: &desc,
	}
}

func TestCreateTransaction(t *testing.T) {
	var got models.NewTransaction
	st := &fakeStore{
		insertTransaction: func(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
			got = in
			return &models.Transaction{
				ID:          "tx-1",
				AccountID:   in.AccountID,
				Amount:      in.Amount,
				Currency:    in.Currency,
				Direction:   in.Direction,
				OccurredAt:  in.OccurredAt,
				Description: in.Description,
				CreatedAt:   time.Now(),
			}, nil
		},
	}
	emb := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	handler := NewCreateTransactionHandler(testDeps(st, emb))

	res, _, err := handler(context.Background(), nil, validTransactionInput())
	require.NoError(t, err)

	var result createTransactionResult
	decodeResult(t, res, &result)
	assert.Equal(t, "tx-1", result.Transaction.ID)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, 1, emb.calls, "description must be embedded")
	assert.Equal(t, []float32{0.1, 0.2}, got.Embedding, "embedding must reach the store")
	assert.Equal(t, models.DirectionExpense, got.Direction)
	assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), got.OccurredAt)
}

func TestCreateTransactionValidation(t *testing.T) {
	st := &fakeStore{}
	emb := &fakeEmbedder{vector: []float32{1}}
	handler := NewCreateTransactionHandler(testDeps(st, emb))

	input := CreateTransactionInput{
		AccountID:  "  ",
		Amount:     -5,
		Currency:   "",
		Direction:  "sideways",
		OccurredAt: "yesterday",
	}
	res, _, err := handler(context.Background(), nil, input)
	require.NoError(t, err)

	payload := decodeError(t, res, KindInvalidArguments)
	names := fieldNames(payload.FieldErrors)
	assert.ElementsMatch(t, []string{"account_id", "amount", "currency", "direction", "occurred_at"}, names,
		"all invalid fields must be reported at once")

	assert.Zero(t, emb.calls, "validation failure must precede embedding")
	assert.Zero(t, st.writes, "validation failure must precede the store write")
}

func TestCreateTransactionAmountEdgeCases(t *testing.T) {
	handler := NewCreateTransactionHandler(testDeps(&fakeStore{}, &fakeEmbedder{vector: []float32{1}}))

	for _, amount := range []float64{0, -0.01} {
		input := validTransactionInput()
		input.Amount = amount
		res, _, err := handler(context.Background(), nil, input)
		require.NoError(t, err)
		payload := decodeError(t, res, KindInvalidArguments)
		assert.Contains(t, fieldNames(payload.FieldErrors), "amount")
	}
}

func TestCreateTransactionEmbedFailureIsNonFatal(t *testing.T) {
	var got models.NewTransaction
	st := &fakeStore{
		insertTransaction: func(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
			got = in
			return &models.Transaction{ID: "tx-1", AccountID: in.AccountID}, nil
		},
	}
	emb := &fakeEmbedder{err: errors.New("provider down")}
	handler := NewCreateTransactionHandler(testDeps(st, emb))

	res, _, err := handler(context.Background(), nil, validTransactionInput())
	require.NoError(t, err)

	var result createTransactionResult
	decodeResult(t, res, &result)
	require.Len(t, result.Warnings, 1, "degraded write must carry a warning")
	assert.Equal(t, KindEmbeddingUnavailable, result.Warnings[0].Kind)

	assert.Equal(t, 1, st.writes, "the write must still happen")
	assert.Nil(t, got.Embedding, "failed embedding must store a null vector")
}

func TestCreateTransactionWithoutDescriptionSkipsEmbedding(t *testing.T) {
	st := &fakeStore{
		insertTransaction: func(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
			return &models.Transaction{ID: "tx-1"}, nil
		},
	}
	emb := &fakeEmbedder{vector: []float32{1}}
	handler := NewCreateTransactionHandler(testDeps(st, emb))

	input := validTransactionInput()
	input.Description = nil
	res, _, err := handler(context.Background(), nil, input)
	require.NoError(t, err)

	var result createTransactionResult
	decodeResult(t, res, &result)
	assert.Empty(t, result.Warnings, "skipped embedding is not a degradation")
	assert.Zero(t, emb.calls, "absent description must not call the embedder")
}

func TestCreateTransactionStoreErrors(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantKind ErrorKind
	}{
		{"unknown account", store.ErrAccountNotFound, KindAccountNotFound},
		{"unknown category", store.ErrCategoryNotFound, KindCategoryNotFound},
		{"store outage", errors.New("connection refused"), KindStoreUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{
				insertTransaction: func(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
					return nil, tt.storeErr
				},
			}
			handler := NewCreateTransactionHandler(testDeps(st, &fakeEmbedder{vector: []float32{1}}))

			res, _, err := handler(context.Background(), nil, validTransactionInput())
			require.NoError(t, err)
			decodeError(t, res, tt.wantKind)
		})
	}
}

func TestCreateTransactionCancelledBeforeWrite(t *testing.T) {
	st := &fakeStore{}
	emb := &fakeEmbedder{vector: []float32{1}}
	handler := NewCreateTransactionHandler(testDeps(st, emb))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := validTransactionInput()
	input.Description = nil // skip the embed step so only the pre-write check fires
	_, _, err := handler(ctx, nil, input)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, st.writes, "cancelled request must not reach the store")
}

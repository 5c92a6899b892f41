// Package store persists finance records in a relational database with
// nearest-neighbor search over embedding columns. Two backends are
// supported: Postgres with pgvector (reference deployment) and SurrealDB
// with native HNSW indexes.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkorchagin/finmcp-go/internal/config"
	"github.com/mkorchagin/finmcp-go/internal/models"
)

// Store abstracts the relational database. Implementations must be safe
// for unbounded concurrent calls; pooling is an internal concern.
type Store interface {
	// InsertTransaction persists a new transaction and returns it with a
	// generated id. Fails with ErrAccountNotFound / ErrCategoryNotFound
	// when a referenced row does not exist; no row is written in that case.
	InsertTransaction(ctx context.Context, in models.NewTransaction) (*models.Transaction, error)

	// UpsertCategory inserts or updates a category keyed by name.
	UpsertCategory(ctx context.Context, in models.CategoryUpsert) (*models.Category, error)

	// UpsertAccount inserts or updates an account keyed by (name, kind).
	// When in.ID is set the row is targeted explicitly; a key collision
	// with a different row fails with ErrUpsertConflict.
	UpsertAccount(ctx context.Context, in models.AccountUpsert) (*models.Account, error)

	// ListAccounts returns accounts matching the filter, ordered by name.
	ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error)

	// SearchTransactions returns up to limit transactions nearest to the
	// query vector, ascending by distance. Rows without an embedding are
	// invisible to the search.
	SearchTransactions(ctx context.Context, embedding []float32, limit int) ([]models.TransactionMatch, error)

	// SearchCategories is SearchTransactions for the categories table.
	SearchCategories(ctx context.Context, embedding []float32, limit int) ([]models.CategoryMatch, error)

	// InitSchema creates tables and vector indexes if they do not exist.
	InitSchema(ctx context.Context) error

	// Close releases the underlying connections.
	Close(ctx context.Context) error
}

// Open connects the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return NewPostgres(ctx, cfg.PostgresURL, cfg.EmbedDimension, logger)

	case config.StoreSurreal:
		return NewSurreal(ctx, SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, cfg.EmbedDimension, logger)

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

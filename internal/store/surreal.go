package store

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// Force HTTP/1.1 for WSS connections to prevent HTTP/2 ALPN negotiation.
	// WebSocket upgrade requires HTTP/1.1 semantics which fail under HTTP/2.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

// SurrealStore implements Store on SurrealDB, using the native HNSW index
// for nearest-neighbor search and an auto-reconnecting WebSocket.
type SurrealStore struct {
	conn      *rews.Connection[*gorillaws.Connection]
	db        *surrealdb.DB
	dimension int
	logger    logger.Logger
}

var _ Store = (*SurrealStore)(nil)

// NewSurreal connects, authenticates, and selects the namespace/database.
func NewSurreal(ctx context.Context, cfg SurrealConfig, dimension int, log *slog.Logger) (*SurrealStore, error) {
	var sdkLogger logger.Logger
	if log != nil {
		sdkLogger = logger.New(log.Handler())
	} else {
		sdkLogger = logger.New(slog.Default().Handler())
	}

	// surrealcbor handles SurrealDB custom CBOR tags (record ids, datetimes)
	codec := surrealcbor.New()

	// gorillaws expects the base URL without the /rpc suffix (it adds /rpc itself)
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			ws := gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			})
			return ws, nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	sdkLogger.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	if cfg.AuthLevel == "database" {
		_, err = db.SignIn(ctx, surrealdb.Auth{
			Namespace: cfg.Namespace,
			Database:  cfg.Database,
			Username:  cfg.Username,
			Password:  cfg.Password,
		})
	} else {
		_, err = db.SignIn(ctx, surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	sdkLogger.Info("SurrealDB connection established")
	return &SurrealStore{conn: conn, db: db, dimension: dimension, logger: sdkLogger}, nil
}

// Close closes the SurrealDB connection.
func (s *SurrealStore) Close(ctx context.Context) error {
	s.logger.Info("closing SurrealDB connection")
	return s.conn.Close(ctx)
}

// InitSchema initializes tables and HNSW indexes.
func (s *SurrealStore) InitSchema(ctx context.Context) error {
	s.logger.Info("initializing SurrealDB schema")
	if _, err := surrealdb.Query[any](ctx, s.db, surrealSchemaSQL(s.dimension), nil); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Row projections. Queries always project record::id() so rows carry plain
// string ids regardless of SurrealDB's record id encoding.

type surrealAccountRow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Currency    string         `json:"currency"`
	Network     *string        `json:"network"`
	Institution *string        `json:"institution"`
	Metadata    map[string]any `json:"metadata"`
	Created     time.Time      `json:"created"`
}

func (r surrealAccountRow) toModel() models.Account {
	return models.Account{
		ID:          r.ID,
		Name:        r.Name,
		Kind:        models.AccountKind(r.Kind),
		Currency:    r.Currency,
		Network:     r.Network,
		Institution: r.Institution,
		Metadata:    r.Metadata,
		CreatedAt:   r.Created,
	}
}

const accountProjection = `record::id(id) AS id, name, kind, currency, network, institution, metadata, created`

type surrealCategoryRow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Description *string   `json:"description"`
	Created     time.Time `json:"created"`
	Distance    float64   `json:"distance"`
}

func (r surrealCategoryRow) toModel() models.Category {
	return models.Category{
		ID:          r.ID,
		Name:        r.Name,
		Kind:        models.CategoryKind(r.Kind),
		Description: r.Description,
		CreatedAt:   r.Created,
	}
}

const categoryProjection = `record::id(id) AS id, name, kind, description, created`

type surrealTransactionRow struct {
	ID          string         `json:"id"`
	AccountID   string         `json:"account_id"`
	Amount      float64        `json:"amount"`
	Currency    string         `json:"currency"`
	Direction   string         `json:"direction"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Description *string        `json:"description"`
	CategoryID  *string        `json:"category_id"`
	RawSource   *string        `json:"raw_source"`
	Metadata    map[string]any `json:"metadata"`
	Created     time.Time      `json:"created"`
	Distance    float64        `json:"distance"`
}

func (r surrealTransactionRow) toModel() models.Transaction {
	return models.Transaction{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Direction:   models.Direction(r.Direction),
		OccurredAt:  r.OccurredAt,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		RawSource:   r.RawSource,
		Metadata:    r.Metadata,
		CreatedAt:   r.Created,
	}
}

const transactionProjection = `record::id(id) AS id, record::id(account) AS account_id, amount, currency,
		direction, occurred_at, description,
		IF category != NONE THEN record::id(category) END AS category_id,
		raw_source, metadata, created`

func (s *SurrealStore) InsertTransaction(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
	// Referential checks up front: SurrealDB record links do not enforce
	// that the target row exists.
	if err := s.checkExists(ctx, "account", in.AccountID, ErrAccountNotFound); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := s.checkExists(ctx, "category", *in.CategoryID, ErrCategoryNotFound); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	categoryClause := ""
	vars := map[string]any{
		"id":          id,
		"account":     in.AccountID,
		"amount":      in.Amount,
		"currency":    in.Currency,
		"direction":   string(in.Direction),
		"occurred_at": in.OccurredAt,
		"description": in.Description,
		"raw_source":  in.RawSource,
		"metadata":    in.Metadata,
		"embedding":   in.Embedding,
	}
	if in.CategoryID != nil {
		categoryClause = `category: type::record("category", $category),`
		vars["category"] = *in.CategoryID
	}

	createSQL := fmt.Sprintf(`
		CREATE type::record("transaction", $id) CONTENT {
			account: type::record("account", $account),
			amount: $amount,
			currency: $currency,
			direction: $direction,
			occurred_at: $occurred_at,
			description: $description,
			%s
			raw_source: $raw_source,
			metadata: $metadata,
			embedding: $embedding
		} RETURN NONE
	`, categoryClause)

	if _, err := surrealdb.Query[any](ctx, s.db, createSQL, vars); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	row, err := s.fetchTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := row.toModel()
	tx.Embedding = in.Embedding
	return &tx, nil
}

func (s *SurrealStore) UpsertCategory(ctx context.Context, in models.CategoryUpsert) (*models.Category, error) {
	ids, err := surrealdb.Query[[]string](ctx, s.db, `
		UPSERT category SET
			name = $name,
			kind = $kind,
			description = $description,
			embedding = $embedding
		WHERE name = $name
		RETURN VALUE record::id(id)
	`, map[string]any{
		"name":        in.Name,
		"kind":        string(in.Kind),
		"description": in.Description,
		"embedding":   in.Embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert category: %w", err)
	}
	id, err := singleID(ids, "category")
	if err != nil {
		return nil, err
	}

	results, err := surrealdb.Query[[]surrealCategoryRow](ctx, s.db, fmt.Sprintf(`
		SELECT %s FROM type::record("category", $id)
	`, categoryProjection), map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("fetch category: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("category %s was not found after upsert", id)
	}

	cat := (*results)[0].Result[0].toModel()
	cat.Embedding = in.Embedding
	return &cat, nil
}

func (s *SurrealStore) UpsertAccount(ctx context.Context, in models.AccountUpsert) (*models.Account, error) {
	vars := map[string]any{
		"name":        in.Name,
		"kind":        string(in.Kind),
		"currency":    in.Currency,
		"network":     in.Network,
		"institution": in.Institution,
		"metadata":    in.Metadata,
	}

	var sql string
	if in.ID != "" {
		// Explicit target: the (name, kind) key may not belong to another row.
		owner, err := s.accountIDByKey(ctx, in.Name, string(in.Kind))
		if err != nil {
			return nil, err
		}
		if owner != "" && owner != in.ID {
			return nil, fmt.Errorf("%w: (name, kind) matches account %s", ErrUpsertConflict, owner)
		}
		vars["id"] = in.ID
		sql = `
			UPDATE type::record("account", $id) SET
				name = $name, kind = $kind, currency = $currency,
				network = $network, institution = $institution, metadata = $metadata
			RETURN VALUE record::id(id)
		`
	} else {
		sql = `
			UPSERT account SET
				name = $name, kind = $kind, currency = $currency,
				network = $network, institution = $institution, metadata = $metadata
			WHERE name = $name AND kind = $kind
			RETURN VALUE record::id(id)
		`
	}

	ids, err := surrealdb.Query[[]string](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	if in.ID != "" && (ids == nil || len(*ids) == 0 || len((*ids)[0].Result) == 0) {
		return nil, fmt.Errorf("%w: id %s", ErrAccountNotFound, in.ID)
	}
	id, err := singleID(ids, "account")
	if err != nil {
		return nil, err
	}

	results, err := surrealdb.Query[[]surrealAccountRow](ctx, s.db, fmt.Sprintf(`
		SELECT %s FROM type::record("account", $id)
	`, accountProjection), map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("account %s was not found after upsert", id)
	}

	account := (*results)[0].Result[0].toModel()
	return &account, nil
}

func (s *SurrealStore) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	kindClause := ""
	vars := map[string]any{}
	if filter.Kind != nil {
		kindClause = "WHERE kind = $kind"
		vars["kind"] = string(*filter.Kind)
	}

	sql := fmt.Sprintf(`SELECT %s FROM account %s ORDER BY name ASC`, accountProjection, kindClause)
	results, err := surrealdb.Query[[]surrealAccountRow](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var accounts []models.Account
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			accounts = append(accounts, row.toModel())
		}
	}
	return filterAccountsByName(accounts, filter.Search), nil
}

func (s *SurrealStore) SearchTransactions(ctx context.Context, embedding []float32, limit int) ([]models.TransactionMatch, error) {
	// KNN operator with ef=40; the HNSW index only covers rows whose
	// embedding is set, so null-embedding rows never appear.
	sql := fmt.Sprintf(`
		SELECT %s, vector::distance::knn() AS distance
		FROM transaction
		WHERE embedding <|%d,40|> $emb
		ORDER BY distance ASC
	`, transactionProjection, limit)

	results, err := surrealdb.Query[[]surrealTransactionRow](ctx, s.db, sql, map[string]any{"emb": embedding})
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}

	matches := []models.TransactionMatch{}
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			matches = append(matches, models.TransactionMatch{
				Transaction: row.toModel(),
				Distance:    row.Distance,
			})
		}
	}
	return matches, nil
}

func (s *SurrealStore) SearchCategories(ctx context.Context, embedding []float32, limit int) ([]models.CategoryMatch, error) {
	sql := fmt.Sprintf(`
		SELECT %s, vector::distance::knn() AS distance
		FROM category
		WHERE embedding <|%d,40|> $emb
		ORDER BY distance ASC
	`, categoryProjection, limit)

	results, err := surrealdb.Query[[]surrealCategoryRow](ctx, s.db, sql, map[string]any{"emb": embedding})
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}

	matches := []models.CategoryMatch{}
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			matches = append(matches, models.CategoryMatch{
				Category: row.toModel(),
				Distance: row.Distance,
			})
		}
	}
	return matches, nil
}

// checkExists verifies a record id resolves, returning notFound otherwise.
func (s *SurrealStore) checkExists(ctx context.Context, table, id string, notFound error) error {
	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, fmt.Sprintf(`
		SELECT record::id(id) AS id FROM type::record("%s", $id)
	`, table), map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("check %s exists: %w", table, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return fmt.Errorf("%w: id %s", notFound, id)
	}
	return nil
}

// accountIDByKey returns the id of the account holding (name, kind),
// or "" when the key is free.
func (s *SurrealStore) accountIDByKey(ctx context.Context, name, kind string) (string, error) {
	results, err := surrealdb.Query[[]string](ctx, s.db, `
		SELECT VALUE record::id(id) FROM account WHERE name = $name AND kind = $kind
	`, map[string]any{"name": name, "kind": kind})
	if err != nil {
		return "", fmt.Errorf("resolve upsert key: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", nil
	}
	return (*results)[0].Result[0], nil
}

func (s *SurrealStore) fetchTransaction(ctx context.Context, id string) (*surrealTransactionRow, error) {
	results, err := surrealdb.Query[[]surrealTransactionRow](ctx, s.db, fmt.Sprintf(`
		SELECT %s FROM type::record("transaction", $id)
	`, transactionProjection), map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("transaction %s was not found after insert", id)
	}
	return &(*results)[0].Result[0], nil
}

// singleID extracts the id returned by an upsert.
func singleID(ids *[]surrealdb.QueryResult[[]string], table string) (string, error) {
	if ids == nil || len(*ids) == 0 || len((*ids)[0].Result) == 0 {
		return "", fmt.Errorf("%s upsert returned no id", table)
	}
	return (*ids)[0].Result[0], nil
}

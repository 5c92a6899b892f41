package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkorchagin/finmcp-go/internal/models"
)

// PostgresStore implements Store on Postgres with the pgvector extension.
// Vector parameters cross the wire in the pgvector text format and are cast
// server-side, so no extra type codec is needed.
type PostgresStore struct {
	pool      *pgxpool.Pool
	dimension int
	logger    *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres creates a connection pool and verifies connectivity.
func NewPostgres(ctx context.Context, connString string, dimension int, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("postgres connection established", "dimension", dimension)
	return &PostgresStore{pool: pool, dimension: dimension, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

// InitSchema creates tables and HNSW indexes if they do not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	s.logger.Info("initializing postgres schema")
	if _, err := s.pool.Exec(ctx, postgresSchemaSQL(s.dimension)); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertTransaction(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
	id := uuid.NewString()
	meta, err := metadataJSON(in.Metadata)
	if err != nil {
		return nil, err
	}

	var createdAt time.Time
	err = s.pool.QueryRow(ctx, `
		INSERT INTO transactions
			(id, account_id, amount, currency, direction, occurred_at,
			 description, category_id, raw_source, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::jsonb, '{}'::jsonb), $11::vector)
		RETURNING created_at
	`,
		id, in.AccountID, in.Amount, in.Currency, string(in.Direction), in.OccurredAt,
		in.Description, in.CategoryID, in.RawSource, meta, encodeVector(in.Embedding),
	).Scan(&createdAt)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("insert transaction: %w", err))
	}

	return &models.Transaction{
		ID:          id,
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Direction:   in.Direction,
		OccurredAt:  in.OccurredAt,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		RawSource:   in.RawSource,
		Metadata:    in.Metadata,
		Embedding:   in.Embedding,
		CreatedAt:   createdAt,
	}, nil
}

func (s *PostgresStore) UpsertCategory(ctx context.Context, in models.CategoryUpsert) (*models.Category, error) {
	var (
		cat  models.Category
		kind string
	)
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, kind, description, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (name) DO UPDATE SET
			kind = EXCLUDED.kind,
			description = EXCLUDED.description,
			embedding = EXCLUDED.embedding
		RETURNING id, name, kind, description, created_at
	`,
		uuid.NewString(), in.Name, string(in.Kind), in.Description, encodeVector(in.Embedding),
	).Scan(&cat.ID, &cat.Name, &kind, &cat.Description, &cat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert category: %w", err)
	}

	cat.Kind = models.CategoryKind(kind)
	cat.Embedding = in.Embedding
	return &cat, nil
}

func (s *PostgresStore) UpsertAccount(ctx context.Context, in models.AccountUpsert) (*models.Account, error) {
	meta, err := metadataJSON(in.Metadata)
	if err != nil {
		return nil, err
	}

	if in.ID != "" {
		return s.updateAccountByID(ctx, in, meta)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, name, kind, currency, network, institution, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::jsonb, '{}'::jsonb))
		ON CONFLICT (name, kind) DO UPDATE SET
			currency = EXCLUDED.currency,
			network = EXCLUDED.network,
			institution = EXCLUDED.institution,
			metadata = EXCLUDED.metadata
		RETURNING id, name, kind, currency, network, institution, metadata, created_at
	`, uuid.NewString(), in.Name, string(in.Kind), in.Currency, in.Network, in.Institution, meta)

	return scanAccount(row)
}

// updateAccountByID services upserts that address a row explicitly. The
// (name, kind) key may not collide with a different existing row.
func (s *PostgresStore) updateAccountByID(ctx context.Context, in models.AccountUpsert, meta *string) (*models.Account, error) {
	var keyOwner string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM accounts WHERE name = $1 AND kind = $2`,
		in.Name, string(in.Kind),
	).Scan(&keyOwner)
	switch {
	case err == nil && keyOwner != in.ID:
		return nil, fmt.Errorf("%w: (name, kind) matches account %s", ErrUpsertConflict, keyOwner)
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("resolve upsert key: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE accounts SET
			name = $2,
			kind = $3,
			currency = $4,
			network = $5,
			institution = $6,
			metadata = COALESCE($7::jsonb, '{}'::jsonb)
		WHERE id = $1
		RETURNING id, name, kind, currency, network, institution, metadata, created_at
	`, in.ID, in.Name, string(in.Kind), in.Currency, in.Network, in.Institution, meta)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", ErrAccountNotFound, in.ID)
	}
	if err != nil {
		// A concurrent upsert can take the (name, kind) key between the
		// select above and this update; surface that as a conflict.
		return nil, mapPgError(err)
	}
	return account, nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	var kind *string
	if filter.Kind != nil {
		k := string(*filter.Kind)
		kind = &k
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, kind, currency, network, institution, metadata, created_at
		FROM accounts
		WHERE $1::text IS NULL OR kind = $1
		ORDER BY name ASC, id ASC
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return filterAccountsByName(accounts, filter.Search), nil
}

func (s *PostgresStore) SearchTransactions(ctx context.Context, embedding []float32, limit int) ([]models.TransactionMatch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, amount, currency, direction, occurred_at,
		       description, category_id, raw_source, metadata, created_at,
		       embedding <=> $1::vector AS distance
		FROM transactions
		WHERE embedding IS NOT NULL
		ORDER BY distance ASC, created_at ASC, id ASC
		LIMIT $2
	`, encodeVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	defer rows.Close()

	matches := []models.TransactionMatch{}
	for rows.Next() {
		var (
			m         models.TransactionMatch
			direction string
			metaRaw   []byte
		)
		t := &m.Transaction
		err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Currency, &direction, &t.OccurredAt,
			&t.Description, &t.CategoryID, &t.RawSource, &metaRaw, &t.CreatedAt, &m.Distance)
		if err != nil {
			return nil, fmt.Errorf("scan transaction match: %w", err)
		}
		t.Direction = models.Direction(direction)
		if t.Metadata, err = metadataFromJSON(metaRaw); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	return matches, nil
}

func (s *PostgresStore) SearchCategories(ctx context.Context, embedding []float32, limit int) ([]models.CategoryMatch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, kind, description, created_at,
		       embedding <=> $1::vector AS distance
		FROM categories
		WHERE embedding IS NOT NULL
		ORDER BY distance ASC, created_at ASC, id ASC
		LIMIT $2
	`, encodeVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()

	matches := []models.CategoryMatch{}
	for rows.Next() {
		var (
			m    models.CategoryMatch
			kind string
		)
		c := &m.Category
		if err := rows.Scan(&c.ID, &c.Name, &kind, &c.Description, &c.CreatedAt, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan category match: %w", err)
		}
		c.Kind = models.CategoryKind(kind)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	return matches, nil
}

// scanAccount reads one accounts row from a pgx row or rows cursor.
func scanAccount(row pgx.Row) (*models.Account, error) {
	var (
		account models.Account
		kind    string
		metaRaw []byte
	)
	err := row.Scan(&account.ID, &account.Name, &kind, &account.Currency,
		&account.Network, &account.Institution, &metaRaw, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	account.Kind = models.AccountKind(kind)
	if account.Metadata, err = metadataFromJSON(metaRaw); err != nil {
		return nil, err
	}
	return &account, nil
}

// metadataJSON serializes an open metadata map for a jsonb parameter.
// Nil maps become NULL so the schema default applies.
func metadataJSON(m map[string]any) (*string, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	s := string(b)
	return &s, nil
}

func metadataFromJSON(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

// filterAccountsByName applies the case-insensitive name substring filter.
// Done in application code so both backends behave identically.
func filterAccountsByName(accounts []models.Account, search string) []models.Account {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return accounts
	}
	filtered := accounts[:0]
	for _, a := range accounts {
		if strings.Contains(strings.ToLower(a.Name), needle) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// mapPgError translates constraint violations into sentinel errors.
// 23503 is foreign_key_violation, 23505 is unique_violation.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23503":
		switch {
		case strings.Contains(pgErr.ConstraintName, "account"):
			return fmt.Errorf("%w: %s", ErrAccountNotFound, pgErr.Detail)
		case strings.Contains(pgErr.ConstraintName, "category"):
			return fmt.Errorf("%w: %s", ErrCategoryNotFound, pgErr.Detail)
		}
	case "23505":
		if strings.Contains(pgErr.ConstraintName, "account") {
			return fmt.Errorf("%w: %s", ErrUpsertConflict, pgErr.Detail)
		}
	}
	return err
}

package store

import "fmt"

// postgresSchemaSQL renders the Postgres DDL for the given embedding
// dimension. All statements are idempotent.
func postgresSchemaSQL(dimension int) string {
	return fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS accounts (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			kind        TEXT NOT NULL CHECK (kind IN ('onchain', 'offchain')),
			currency    TEXT NOT NULL,
			network     TEXT,
			institution TEXT,
			metadata    JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (name, kind)
		);

		CREATE TABLE IF NOT EXISTS categories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			kind        TEXT NOT NULL CHECK (kind IN ('income', 'expense', 'transfer')),
			description TEXT,
			embedding   vector(%d),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			account_id  TEXT NOT NULL REFERENCES accounts (id),
			amount      DOUBLE PRECISION NOT NULL CHECK (amount > 0),
			currency    TEXT NOT NULL,
			direction   TEXT NOT NULL CHECK (direction IN ('income', 'expense', 'transfer')),
			occurred_at TIMESTAMPTZ NOT NULL,
			description TEXT,
			category_id TEXT REFERENCES categories (id),
			raw_source  TEXT,
			metadata    JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding   vector(%d),
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS transactions_account_idx ON transactions (account_id);
		CREATE INDEX IF NOT EXISTS transactions_embedding_idx
			ON transactions USING hnsw (embedding vector_cosine_ops);
		CREATE INDEX IF NOT EXISTS categories_embedding_idx
			ON categories USING hnsw (embedding vector_cosine_ops);
	`, dimension, dimension)
}

// surrealSchemaSQL renders the SurrealDB schema for the given embedding
// dimension. The HNSW index dimension must match the embedder's output.
func surrealSchemaSQL(dimension int) string {
	return fmt.Sprintf(`
		DEFINE TABLE IF NOT EXISTS account SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS name ON account TYPE string;
		DEFINE FIELD IF NOT EXISTS kind ON account TYPE string ASSERT $value IN ['onchain', 'offchain'];
		DEFINE FIELD IF NOT EXISTS currency ON account TYPE string;
		DEFINE FIELD IF NOT EXISTS network ON account TYPE option<string>;
		DEFINE FIELD IF NOT EXISTS institution ON account TYPE option<string>;
		DEFINE FIELD IF NOT EXISTS metadata ON account TYPE option<object> FLEXIBLE;
		DEFINE FIELD IF NOT EXISTS created ON account TYPE datetime DEFAULT time::now();
		DEFINE INDEX IF NOT EXISTS account_key ON account FIELDS name, kind UNIQUE;

		DEFINE TABLE IF NOT EXISTS category SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS name ON category TYPE string;
		DEFINE FIELD IF NOT EXISTS kind ON category TYPE string ASSERT $value IN ['income', 'expense', 'transfer'];
		DEFINE FIELD IF NOT EXISTS description ON category TYPE option<string>;
		DEFINE FIELD IF NOT EXISTS embedding ON category TYPE option<array<float>>;
		DEFINE FIELD IF NOT EXISTS created ON category TYPE datetime DEFAULT time::now();
		DEFINE INDEX IF NOT EXISTS category_name ON category FIELDS name UNIQUE;
		DEFINE INDEX IF NOT EXISTS category_embedding ON category FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

		DEFINE TABLE IF NOT EXISTS transaction SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS account ON transaction TYPE record<account>;
		DEFINE FIELD IF NOT EXISTS amount ON transaction TYPE float ASSERT $value > 0;
		DEFINE FIELD IF NOT EXISTS currency ON transaction TYPE string;
		DEFINE FIELD IF NOT EXISTS direction ON transaction TYPE string ASSERT $value IN ['income', 'expense', 'transfer'];
		DEFINE FIELD IF NOT EXISTS occurred_at ON transaction TYPE datetime;
		DEFINE FIELD IF NOT EXISTS description ON transaction TYPE option<string>;
		DEFINE FIELD IF NOT EXISTS category ON transaction TYPE option<record<category>>;
		DEFINE FIELD IF NOT EXISTS raw_source ON transaction TYPE option<string>;
		DEFINE FIELD IF NOT EXISTS metadata ON transaction TYPE option<object> FLEXIBLE;
		DEFINE FIELD IF NOT EXISTS embedding ON transaction TYPE option<array<float>>;
		DEFINE FIELD IF NOT EXISTS created ON transaction TYPE datetime DEFAULT time::now();
		DEFINE INDEX IF NOT EXISTS transaction_account ON transaction FIELDS account;
		DEFINE INDEX IF NOT EXISTS transaction_embedding ON transaction FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
	`, dimension, dimension)
}

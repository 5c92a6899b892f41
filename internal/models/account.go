package models

import "time"

// Account is a money container: an on-chain wallet or an off-chain
// bank/exchange account. Accounts are never hard-deleted.
type Account struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Kind        AccountKind    `json:"kind"`
	Currency    string         `json:"currency"`
	Network     *string        `json:"network,omitempty"`
	Institution *string        `json:"institution,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AccountUpsert carries the fields for an insert-or-update keyed by
// (name, kind). ID is optional; when set, the upsert targets that row
// explicitly and the key fields must not collide with a different row.
type AccountUpsert struct {
	ID          string
	Name        string
	Kind        AccountKind
	Currency    string
	Network     *string
	Institution *string
	Metadata    map[string]any
}

// AccountFilter narrows list_accounts results. Search is matched
// case-insensitively against account names.
type AccountFilter struct {
	Kind   *AccountKind
	Search string
}

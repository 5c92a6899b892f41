package models

import "time"

// Transaction is a single money movement. Amount is an unsigned magnitude;
// the sign lives in Direction. OccurredAt is caller-supplied real-world time,
// not insert time. Rows are immutable once created.
type Transaction struct {
	ID          string         `json:"id"`
	AccountID   string         `json:"account_id"`
	Amount      float64        `json:"amount"`
	Currency    string         `json:"currency"`
	Direction   Direction      `json:"direction"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Description *string        `json:"description,omitempty"`
	CategoryID  *string        `json:"category_id,omitempty"`
	RawSource   *string        `json:"raw_source,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Embedding   []float32      `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewTransaction carries the fields for a transaction insert. Embedding is
// the vector derived from Description, or nil when generation was skipped
// or failed non-fatally.
type NewTransaction struct {
	AccountID   string
	Amount      float64
	Currency    string
	Direction   Direction
	OccurredAt  time.Time
	Description *string
	CategoryID  *string
	RawSource   *string
	Metadata    map[string]any
	Embedding   []float32
}

// TransactionMatch pairs a transaction with its similarity distance to a
// query vector. Smaller distance means more similar.
type TransactionMatch struct {
	Transaction Transaction `json:"transaction"`
	Distance    float64     `json:"distance"`
}

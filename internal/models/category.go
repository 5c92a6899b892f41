package models

import "time"

// Category labels transactions and carries an embedding of its description
// so that free-text queries can resolve to a category. Names are unique.
// Embedding is nil when generation was skipped or failed non-fatally; such
// rows are invisible to similarity search but list/lookup normally.
type Category struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Kind        CategoryKind `json:"kind"`
	Description *string      `json:"description,omitempty"`
	Embedding   []float32    `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CategoryUpsert carries the fields for an insert-or-update keyed by name.
// Embedding is the vector derived from Description (nil when skipped).
type CategoryUpsert struct {
	Name        string
	Kind        CategoryKind
	Description *string
	Embedding   []float32
}

// CategoryMatch pairs a category with its similarity distance to a query
// vector. Smaller distance means more similar.
type CategoryMatch struct {
	Category Category `json:"category"`
	Distance float64  `json:"distance"`
}

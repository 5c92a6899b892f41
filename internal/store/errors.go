package store

import "errors"

// Sentinel errors for store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAccountNotFound indicates a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCategoryNotFound indicates a referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUpsertConflict indicates an upsert addressed an explicit row id
	// while its (name, kind) key matched a different existing row.
	ErrUpsertConflict = errors.New("ambiguous upsert target")
)

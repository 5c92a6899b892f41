// Package models defines the account, category, and transaction records
// persisted by the finmcp store.
package models

import "fmt"

// Direction classifies a transaction's money flow.
type Direction string

const (
	DirectionIncome   Direction = "income"
	DirectionExpense  Direction = "expense"
	DirectionTransfer Direction = "transfer"
)

// ParseDirection validates a wire-level direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionIncome, DirectionExpense, DirectionTransfer:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q (expected income, expense, or transfer)", s)
}

// AccountKind distinguishes blockchain wallets from bank/exchange accounts.
type AccountKind string

const (
	AccountOnchain  AccountKind = "onchain"
	AccountOffchain AccountKind = "offchain"
)

// ParseAccountKind validates a wire-level account kind string.
func ParseAccountKind(s string) (AccountKind, error) {
	switch AccountKind(s) {
	case AccountOnchain, AccountOffchain:
		return AccountKind(s), nil
	}
	return "", fmt.Errorf("unknown account kind %q (expected onchain or offchain)", s)
}

// CategoryKind mirrors Direction for categories.
type CategoryKind string

const (
	CategoryIncome   CategoryKind = "income"
	CategoryExpense  CategoryKind = "expense"
	CategoryTransfer CategoryKind = "transfer"
)

// ParseCategoryKind validates a wire-level category kind string.
func ParseCategoryKind(s string) (CategoryKind, error) {
	switch CategoryKind(s) {
	case CategoryIncome, CategoryExpense, CategoryTransfer:
		return CategoryKind(s), nil
	}
	return "", fmt.Errorf("unknown category kind %q (expected income, expense, or transfer)", s)
}

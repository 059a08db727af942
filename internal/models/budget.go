package models

import "github.com/shopspring/decimal"

// Budget is a per-user spending category with a monthly limit.
type Budget struct {
	ID        int64
	UserID    int64
	Category  string
	Limit     decimal.Decimal
	CreatedAt int64

	// Spent is the sum of expense amounts recorded against this budget,
	// populated on reads.
	Spent decimal.Decimal
}

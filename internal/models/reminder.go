package models

import "github.com/shopspring/decimal"

// Reminder is a payment reminder a user keeps against a friend. Paying a
// reminder from the wallet goes through the normal settlement path.
type Reminder struct {
	ID          int64
	UserID      int64
	FriendID    int64
	Amount      decimal.Decimal
	Description string

	// DueDate is optional, ISO form (YYYY-MM-DD) when set.
	DueDate string

	Paid      bool
	CreatedAt int64
}

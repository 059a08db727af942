package models

import "github.com/shopspring/decimal"

// Group is a reusable set of users who frequently split expenses.
type Group struct {
	ID        int64
	Name      string
	OwnerID   int64
	CreatedAt int64

	// Members holds the usernames of group members, populated on reads.
	Members []string

	// TotalExpenses is the sum of expense amounts recorded against the
	// group, populated on reads.
	TotalExpenses decimal.Decimal
}

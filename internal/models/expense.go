package models

import "github.com/shopspring/decimal"

// Expense represents a single payment event made by one user on behalf of
// several participants.
//
// Amount is a historical record: it equals the sum of the splits' owed
// amounts at creation time and is not re-enforced as repayments reduce the
// splits.
type Expense struct {
	// ID is the database-assigned identifier.
	ID int64

	// Description is the human-readable purpose of the expense.
	Description string

	// Amount is the full amount paid (positive).
	Amount decimal.Decimal

	// Date is the expense date in ISO form (YYYY-MM-DD).
	// Lexicographic order on this field is chronological order, which the
	// settlement allocator relies on.
	Date string

	// PaidBy is the user who fronted the money.
	PaidBy int64

	// GroupID optionally ties the expense to a group.
	GroupID *int64

	// BudgetID optionally ties the expense to one of the payer's budget
	// categories.
	BudgetID *int64

	// Splits are the per-participant owed shares.
	Splits []Split
}

// Split is one participant's owed share of one expense. AmountOwed decreases
// as the debt is repaid; Original keeps the allocation made at creation time.
//
// Invariant: 0 <= AmountOwed <= Original.
type Split struct {
	ID        int64
	ExpenseID int64

	// UserID is the ower.
	UserID int64

	// AmountOwed is the outstanding share, reduced by repayments.
	AmountOwed decimal.Decimal

	// Original is the share assigned when the expense was created or last
	// edited. A split with AmountOwed != Original has repayment progress,
	// which blocks wholesale split replacement on expense edit.
	Original decimal.Decimal

	// Username is populated on reads that join the users table.
	Username string
}

// Repaid reports whether any repayment has been applied against the split.
func (s Split) Repaid() bool {
	return !s.AmountOwed.Equal(s.Original)
}

// OutstandingSplit is the slice of split state the settlement allocator
// needs: identity, ordering keys, and the open amount.
type OutstandingSplit struct {
	SplitID     int64
	ExpenseID   int64
	ExpenseDate string
	AmountOwed  decimal.Decimal
}

// FriendSplit is a split joined with its expense's payer, the shape needed
// to net balances between two users.
type FriendSplit struct {
	PayerID    int64
	OwerID     int64
	AmountOwed decimal.Decimal
}

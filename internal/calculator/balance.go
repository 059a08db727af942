package calculator

import "github.com/shopspring/decimal"

// Summary is a user's overall position across all expenses.
type Summary struct {
	// TotalPaid is the sum of expense amounts the user fronted.
	TotalPaid decimal.Decimal

	// TotalOwed is the sum of the user's outstanding split amounts,
	// regardless of who paid.
	TotalOwed decimal.Decimal
}

// FriendSplit is the minimal split view needed to net a balance between two
// users: who paid the expense, who owes the share, and how much is open.
type FriendSplit struct {
	PayerID    int64
	OwerID     int64
	AmountOwed decimal.Decimal
}

// NetBalance nets the debt between a user and a friend. The two directions
// are summed independently because a pair of users can simultaneously owe
// each other via different expenses.
//
// Positive means the friend owes the user; negative means the user owes the
// friend. No shared expenses yields zero.
func NetBalance(userID, friendID int64, splits []FriendSplit) decimal.Decimal {
	owedToUser := decimal.Zero
	owedByUser := decimal.Zero

	for _, s := range splits {
		switch {
		case s.PayerID == userID && s.OwerID == friendID:
			owedToUser = owedToUser.Add(s.AmountOwed)
		case s.PayerID == friendID && s.OwerID == userID:
			owedByUser = owedByUser.Add(s.AmountOwed)
		}
	}

	return owedToUser.Sub(owedByUser)
}

// Sum adds a list of amounts, tolerating the empty list (returns zero).
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

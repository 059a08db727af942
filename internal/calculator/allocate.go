// Package calculator holds the pure ledger math: repayment allocation across
// outstanding splits and balance netting. It performs no I/O; callers fetch
// the relevant rows and apply the results transactionally.
package calculator

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for non-positive repayment amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrOverpayment is returned when a repayment exceeds the total
	// outstanding debt. Policy: reject rather than carry the excess as
	// credit.
	ErrOverpayment = errors.New("amount exceeds outstanding debt")
)

// OutstandingSplit is one open split owed by the payer to the creditor.
type OutstandingSplit struct {
	SplitID     int64
	ExpenseID   int64
	ExpenseDate string // ISO date; lexicographic order is chronological
	AmountOwed  decimal.Decimal
}

// Reduction records how a single split is changed by an allocation.
type Reduction struct {
	SplitID   int64
	Reduce    decimal.Decimal
	NewAmount decimal.Decimal
}

// AllocateOldestFirst distributes a repayment across outstanding splits,
// oldest expense date first, ties broken by ascending expense id. Each split
// is reduced by min(remaining, owed) until the amount is exhausted.
//
// The returned reductions cover only splits actually changed, and their
// Reduce values sum to amount exactly. No split ever goes negative.
func AllocateOldestFirst(splits []OutstandingSplit, amount decimal.Decimal) ([]Reduction, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.AmountOwed)
	}
	if amount.GreaterThan(total) {
		return nil, ErrOverpayment
	}

	ordered := make([]OutstandingSplit, len(splits))
	copy(ordered, splits)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].ExpenseDate != ordered[j].ExpenseDate {
			return ordered[i].ExpenseDate < ordered[j].ExpenseDate
		}
		return ordered[i].ExpenseID < ordered[j].ExpenseID
	})

	var reductions []Reduction
	remaining := amount
	for _, s := range ordered {
		if remaining.Sign() == 0 {
			break
		}
		if s.AmountOwed.Sign() <= 0 {
			continue
		}

		reduce := decimal.Min(remaining, s.AmountOwed)
		reductions = append(reductions, Reduction{
			SplitID:   s.SplitID,
			Reduce:    reduce,
			NewAmount: s.AmountOwed.Sub(reduce),
		})
		remaining = remaining.Sub(reduce)
	}

	return reductions, nil
}

package models

import "github.com/shopspring/decimal"

// Wallet transaction types. Direction is encoded here, never in the amount.
const (
	TxCredit = "credit"
	TxDebit  = "debit"
)

// WalletAccount is a user's virtual in-app balance. One per user, created
// lazily on first access.
//
// Invariant: Balance equals the signed sum of the account's transactions
// since creation, and is never negative after a successful operation.
type WalletAccount struct {
	ID        int64
	UserID    int64
	Balance   decimal.Decimal
	Currency  string
	CreatedAt int64
	UpdatedAt int64
}

// WalletTransaction is an immutable append-only audit record. Rows are never
// mutated or deleted.
type WalletTransaction struct {
	ID     int64
	UserID int64

	// Type is TxCredit or TxDebit.
	Type string

	// Amount is always positive; Type carries the sign.
	Amount decimal.Decimal

	Description string

	// Reference is a UUID assigned when the transaction is recorded, for
	// correlating with notifications and external logs.
	Reference string

	CreatedAt int64
}

// SplitUpdate records one split mutated by a settlement.
type SplitUpdate struct {
	SplitID   int64           `json:"splitId"`
	NewAmount decimal.Decimal `json:"newAmount"`
}

// SettlementResult is the outcome of an atomic debit-plus-allocation.
type SettlementResult struct {
	// NewBalance is the payer's wallet balance after the debit.
	NewBalance decimal.Decimal

	// SplitsUpdated lists the splits reduced by the allocation, oldest
	// expense first.
	SplitsUpdated []SplitUpdate

	// Transaction is the wallet debit that paid for the settlement.
	Transaction *WalletTransaction
}

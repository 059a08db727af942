package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/calculator"
	"github.com/nexoapp/nexo/internal/models"
)

// SettleDebt debits the payer's wallet and allocates the amount across the
// splits the payer owes the creditor, oldest expense first. The whole
// read-modify-write cycle runs in a single transaction: a failure anywhere
// rolls back both the wallet debit and every split reduction.
//
// Rejections happen before any write: calculator.ErrInvalidAmount for a
// non-positive amount, calculator.ErrOverpayment when the amount exceeds the
// outstanding total, storage.ErrInsufficientBalance when the wallet cannot
// cover it.
func (s *SQLiteStore) SettleDebt(ctx context.Context, payerID, creditorID int64, amount decimal.Decimal, description string) (*models.SettlementResult, error) {
	if amount.Sign() <= 0 {
		return nil, calculator.ErrInvalidAmount
	}

	if _, err := s.GetOrCreateWallet(ctx, payerID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Snapshot the outstanding splits inside the transaction so racing
	// repayments cannot allocate against stale amounts.
	outstanding, err := outstandingSplits(ctx, tx, payerID, creditorID)
	if err != nil {
		return nil, err
	}

	calcSplits := make([]calculator.OutstandingSplit, len(outstanding))
	for i, os := range outstanding {
		calcSplits[i] = calculator.OutstandingSplit{
			SplitID:     os.SplitID,
			ExpenseID:   os.ExpenseID,
			ExpenseDate: os.ExpenseDate,
			AmountOwed:  os.AmountOwed,
		}
	}

	reductions, err := calculator.AllocateOldestFirst(calcSplits, amount)
	if err != nil {
		return nil, err
	}

	wallet, err := s.getWallet(ctx, tx, payerID)
	if err != nil {
		return nil, err
	}

	txn, err := applyWalletTx(ctx, tx, wallet, models.TxDebit, amount, description)
	if err != nil {
		return nil, err
	}

	if s.settleHook != nil {
		if err := s.settleHook(); err != nil {
			return nil, err
		}
	}

	result := &models.SettlementResult{
		NewBalance:  wallet.Balance,
		Transaction: txn,
	}

	allocated := decimal.Zero
	for _, r := range reductions {
		res, err := tx.ExecContext(ctx,
			"UPDATE expense_splits SET amount_owed = ? WHERE id = ?",
			r.NewAmount, r.SplitID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update split %d: %w", r.SplitID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected != 1 {
			return nil, fmt.Errorf("split %d vanished during settlement", r.SplitID)
		}

		allocated = allocated.Add(r.Reduce)
		result.SplitsUpdated = append(result.SplitsUpdated, models.SplitUpdate{
			SplitID:   r.SplitID,
			NewAmount: r.NewAmount,
		})
	}

	// The reductions must reconcile exactly; anything else means the
	// snapshot was corrupted mid-flight.
	if !allocated.Equal(amount) {
		return nil, fmt.Errorf("allocated %s of %s", allocated, amount)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return result, nil
}

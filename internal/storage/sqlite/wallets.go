package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// GetOrCreateWallet returns the user's wallet, creating a zero-balance
// account on first access. The unique constraint on user_id plus INSERT OR
// IGNORE makes concurrent first accesses race-safe.
func (s *SQLiteStore) GetOrCreateWallet(ctx context.Context, userID int64) (*models.WalletAccount, error) {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO wallets (user_id, balance, created_at, updated_at) VALUES (?, '0', ?, ?)",
		userID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return s.getWallet(ctx, s.db, userID)
}

func (s *SQLiteStore) getWallet(ctx context.Context, q queryRower, userID int64) (*models.WalletAccount, error) {
	w := &models.WalletAccount{}
	err := q.QueryRowContext(ctx,
		"SELECT id, user_id, balance, currency, created_at, updated_at FROM wallets WHERE user_id = ?",
		userID,
	).Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wallet for user %d: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// applyWalletTx mutates the wallet balance and appends the matching
// transaction row. Must run inside a database transaction; the two writes
// are one unit.
func applyWalletTx(ctx context.Context, tx queryRower, wallet *models.WalletAccount, txType string, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	newBalance := wallet.Balance
	switch txType {
	case models.TxCredit:
		newBalance = newBalance.Add(amount)
	case models.TxDebit:
		newBalance = newBalance.Sub(amount)
	default:
		return nil, fmt.Errorf("unknown wallet transaction type %q", txType)
	}
	if newBalance.Sign() < 0 {
		return nil, fmt.Errorf("debit of %s exceeds balance %s: %w",
			amount, wallet.Balance, storage.ErrInsufficientBalance)
	}

	now := time.Now().Unix()
	_, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance = ?, updated_at = ? WHERE id = ?",
		newBalance, now, wallet.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	txn := &models.WalletTransaction{
		UserID:      wallet.UserID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Reference:   uuid.New().String(),
		CreatedAt:   now,
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO wallet_transactions (user_id, type, amount, description, reference, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		txn.UserID, txn.Type, txn.Amount, txn.Description, txn.Reference, txn.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert wallet transaction: %w", err)
	}
	txn.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction id: %w", err)
	}

	wallet.Balance = newBalance
	wallet.UpdatedAt = now
	return txn, nil
}

func (s *SQLiteStore) walletMutation(ctx context.Context, userID int64, txType string, amount decimal.Decimal, description string) (*models.WalletAccount, *models.WalletTransaction, error) {
	if _, err := s.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	wallet, err := s.getWallet(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	txn, err := applyWalletTx(ctx, tx, wallet, txType, amount, description)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return wallet, txn, nil
}

// Credit adds funds to the user's wallet, creating the account if needed.
func (s *SQLiteStore) Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*models.WalletAccount, *models.WalletTransaction, error) {
	return s.walletMutation(ctx, userID, models.TxCredit, amount, description)
}

// Debit removes funds from the user's wallet. Fails with
// storage.ErrInsufficientBalance when the amount exceeds the balance,
// without writing anything.
func (s *SQLiteStore) Debit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*models.WalletAccount, *models.WalletTransaction, error) {
	return s.walletMutation(ctx, userID, models.TxDebit, amount, description)
}

// WalletTransactions returns the user's transaction history, newest first.
func (s *SQLiteStore) WalletTransactions(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, description, reference, created_at
		FROM wallet_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.WalletTransaction
	for rows.Next() {
		txn := &models.WalletTransaction{}
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Type, &txn.Amount,
			&txn.Description, &txn.Reference, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet transactions: %w", err)
	}
	return txns, nil
}

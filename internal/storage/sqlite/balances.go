package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/models"
)

// sumColumn adds a list of decimal amounts fetched by the given query.
// Amounts are summed in Go; SQL SUM over the TEXT columns would coerce to
// float and drift.
func (s *SQLiteStore) sumColumn(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate amounts: %w", err)
	}
	return total, nil
}

// SumPaid returns the total of expense amounts the user fronted. Zero rows
// yield zero.
func (s *SQLiteStore) SumPaid(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.sumColumn(ctx, "SELECT amount FROM expenses WHERE paid_by = ?", userID)
}

// SumOwed returns the total outstanding split amount across all expenses the
// user participates in, regardless of payer. Zero rows yield zero.
func (s *SQLiteStore) SumOwed(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.sumColumn(ctx, "SELECT amount_owed FROM expense_splits WHERE user_id = ?", userID)
}

// SplitsBetween returns the open splits linking two users in either
// direction, joined with the expense payer.
func (s *SQLiteStore) SplitsBetween(ctx context.Context, userID, friendID int64) ([]models.FriendSplit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.paid_by, s.user_id, s.amount_owed
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE (e.paid_by = ? AND s.user_id = ?) OR (e.paid_by = ? AND s.user_id = ?)`,
		userID, friendID, friendID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits between users: %w", err)
	}
	defer rows.Close()

	var splits []models.FriendSplit
	for rows.Next() {
		var fs models.FriendSplit
		if err := rows.Scan(&fs.PayerID, &fs.OwerID, &fs.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// OutstandingSplits returns the ower's open splits on expenses the creditor
// paid, oldest expense date first, ties broken by ascending expense id.
func (s *SQLiteStore) OutstandingSplits(ctx context.Context, owerID, creditorID int64) ([]models.OutstandingSplit, error) {
	return outstandingSplits(ctx, s.db, owerID, creditorID)
}

// queryer lets the outstanding-splits read run either on the pool or inside
// the settlement transaction.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func outstandingSplits(ctx context.Context, q queryer, owerID, creditorID int64) ([]models.OutstandingSplit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT s.id, e.id, e.date, s.amount_owed
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.paid_by = ? AND s.user_id = ? AND CAST(s.amount_owed AS REAL) > 0
		ORDER BY e.date ASC, e.id ASC`,
		creditorID, owerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding splits: %w", err)
	}
	defer rows.Close()

	var splits []models.OutstandingSplit
	for rows.Next() {
		var os models.OutstandingSplit
		if err := rows.Scan(&os.SplitID, &os.ExpenseID, &os.ExpenseDate, &os.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan outstanding split: %w", err)
		}
		splits = append(splits, os)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outstanding splits: %w", err)
	}
	return splits, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// CreateExpense persists an expense and all of its splits in one
// transaction. Each split's original allocation is recorded alongside the
// owed amount so later edits can detect repayment progress.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO expenses (description, amount, date, paid_by, group_id, budget_id) VALUES (?, ?, ?, ?, ?, ?)",
		expense.Description, expense.Amount, expense.Date, expense.PaidBy, expense.GroupID, expense.BudgetID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID
		split.Original = split.AmountOwed

		res, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount_owed, original_amount) VALUES (?, ?, ?, ?)",
			split.ExpenseID, split.UserID, split.AmountOwed, split.Original,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
		split.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read split id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, description, amount, date, paid_by, group_id, budget_id FROM expenses WHERE id = ?",
		id,
	).Scan(&expense.ID, &expense.Description, &expense.Amount, &expense.Date,
		&expense.PaidBy, &expense.GroupID, &expense.BudgetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.Splits, err = s.splitsForExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *SQLiteStore) splitsForExpense(ctx context.Context, expenseID int64) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.expense_id, s.user_id, s.amount_owed, s.original_amount, u.username
		FROM expense_splits s
		JOIN users u ON u.id = s.user_id
		WHERE s.expense_id = ?
		ORDER BY s.id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID,
			&split.AmountOwed, &split.Original, &split.Username); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

// UpdateExpense replaces the expense's scalar fields and its entire split
// set. The replacement is refused with storage.ErrConflict when any existing
// split has repayment progress, since deleting it would silently erase that
// progress.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM expenses WHERE id = ?", expense.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("expense %d: %w", expense.ID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	var repaid int64
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expense_splits WHERE expense_id = ? AND amount_owed != original_amount",
		expense.ID,
	).Scan(&repaid)
	if err != nil {
		return fmt.Errorf("failed to check repayment progress: %w", err)
	}
	if repaid > 0 {
		return fmt.Errorf("expense %d has partially repaid splits: %w", expense.ID, storage.ErrConflict)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE expenses SET description = ?, amount = ?, date = ?, paid_by = ?, group_id = ?, budget_id = ? WHERE id = ?",
		expense.Description, expense.Amount, expense.Date, expense.PaidBy,
		expense.GroupID, expense.BudgetID, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete old splits: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID
		split.Original = split.AmountOwed

		res, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount_owed, original_amount) VALUES (?, ?, ?, ?)",
			split.ExpenseID, split.UserID, split.AmountOwed, split.Original,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
		split.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read split id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense and its splits in one transaction.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpenses returns every expense the user paid or participates in,
// newest date first, newest id first within a date.
func (s *SQLiteStore) ListExpenses(ctx context.Context, userID int64) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT e.id, e.description, e.amount, e.date, e.paid_by, e.group_id, e.budget_id
		FROM expenses e
		LEFT JOIN expense_splits s ON s.expense_id = e.id
		WHERE e.paid_by = ? OR s.user_id = ?
		ORDER BY e.date DESC, e.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Date, &e.PaidBy, &e.GroupID, &e.BudgetID); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, e := range expenses {
		e.Splits, err = s.splitsForExpense(ctx, e.ID)
		if err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// RecentExpenses returns the user's most recently dated paid expenses,
// without splits.
func (s *SQLiteStore) RecentExpenses(ctx context.Context, userID int64, limit int) ([]*models.Expense, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, amount, date, paid_by, group_id, budget_id
		FROM expenses
		WHERE paid_by = ?
		ORDER BY date DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Date, &e.PaidBy, &e.GroupID, &e.BudgetID); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// CreateBudget persists a budget category. A duplicate category for the same
// user maps to storage.ErrConflict.
func (s *SQLiteStore) CreateBudget(ctx context.Context, b *models.Budget) error {
	if b.CreatedAt == 0 {
		b.CreatedAt = time.Now().Unix()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO budgets (user_id, category, spend_limit, created_at) VALUES (?, ?, ?, ?)",
		b.UserID, b.Category, b.Limit, b.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("budget category %s: %w", b.Category, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read budget id: %w", err)
	}
	return nil
}

// ListBudgets returns the user's budgets with the spend accumulated from
// associated expenses.
func (s *SQLiteStore) ListBudgets(ctx context.Context, userID int64) ([]*models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category, spend_limit, created_at
		FROM budgets
		WHERE user_id = ?
		ORDER BY category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		b := &models.Budget{Spent: decimal.Zero}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	for _, b := range budgets {
		spent, err := s.sumColumn(ctx, "SELECT amount FROM expenses WHERE budget_id = ?", b.ID)
		if err != nil {
			return nil, err
		}
		b.Spent = spent
	}
	return budgets, nil
}

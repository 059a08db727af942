package service

import (
	"context"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// BudgetService manages per-user spending categories.
type BudgetService struct {
	store storage.Store
}

// NewBudgetService creates a new budget service.
func NewBudgetService(store storage.Store) *BudgetService {
	return &BudgetService{store: store}
}

// Create adds a budget category for the user. Category names are unique per
// user; a duplicate fails with storage.ErrConflict.
func (s *BudgetService) Create(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	if budget.Category == "" {
		return nil, invalidf("category required")
	}
	budget.Limit = budget.Limit.Round(2)
	if !budget.Limit.IsPositive() {
		return nil, invalidf("limit must be positive")
	}

	if err := s.store.CreateBudget(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// List returns the user's budgets with the spend against each attached.
func (s *BudgetService) List(ctx context.Context, userID int64) ([]*models.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

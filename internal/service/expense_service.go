package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/calculator"
	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// ExpenseService manages the expense lifecycle and the balance views derived
// from it.
type ExpenseService struct {
	store    storage.Store
	notifier *NotificationService
}

// NewExpenseService creates a new expense service.
func NewExpenseService(store storage.Store, notifier *NotificationService) *ExpenseService {
	return &ExpenseService{store: store, notifier: notifier}
}

// Dashboard is the landing-page summary for a user.
type Dashboard struct {
	FriendCount    int64             `json:"friendCount"`
	GroupCount     int64             `json:"groupCount"`
	RecentExpenses []*models.Expense `json:"recentExpenses"`
}

func validateExpense(expense *models.Expense) error {
	if expense.Description == "" {
		return invalidf("description required")
	}
	if !expense.Amount.IsPositive() {
		return invalidf("amount must be positive")
	}
	if _, err := time.Parse("2006-01-02", expense.Date); err != nil {
		return invalidf("date must be YYYY-MM-DD")
	}
	if expense.PaidBy == 0 {
		return invalidf("payer required")
	}
	if len(expense.Splits) == 0 {
		return invalidf("at least one split required")
	}
	for _, split := range expense.Splits {
		if split.UserID == 0 {
			return invalidf("split user required")
		}
		if split.AmountOwed.IsNegative() {
			return invalidf("split amount must not be negative")
		}
	}
	return nil
}

// roundExpenseAmounts normalizes all amounts to two decimal places.
func roundExpenseAmounts(expense *models.Expense) {
	expense.Amount = expense.Amount.Round(2)
	for i := range expense.Splits {
		expense.Splits[i].AmountOwed = expense.Splits[i].AmountOwed.Round(2)
	}
}

// Create validates and persists an expense with its splits. The split sum is
// NOT required to equal the expense amount; a mismatch is recorded as-is and
// only logged.
func (s *ExpenseService) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	roundExpenseAmounts(expense)
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	splitSum := decimal.Zero
	for _, split := range expense.Splits {
		splitSum = splitSum.Add(split.AmountOwed)
	}
	if !splitSum.Equal(expense.Amount) {
		slog.Debug("split sum differs from expense amount",
			"amount", expense.Amount, "split_sum", splitSum)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	if err := s.store.IncrementCounter(ctx, expense.PaidBy, models.CounterExpensesAdded); err != nil {
		slog.Warn("failed to bump expense counter", "user_id", expense.PaidBy, "error", err)
	}

	// Tell the other participants, best effort.
	for _, split := range expense.Splits {
		if split.UserID == expense.PaidBy {
			continue
		}
		err := s.notifier.Notify(ctx, split.UserID, models.NotifyExpenseAdded,
			"New expense",
			fmt.Sprintf("You owe %s for %q", split.AmountOwed, expense.Description),
			map[string]any{"expenseId": expense.ID})
		if err != nil {
			slog.Warn("failed to notify participant", "user_id", split.UserID, "error", err)
		}
	}

	return expense, nil
}

// Get returns one expense with splits attached.
func (s *ExpenseService) Get(ctx context.Context, id int64) (*models.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// Update replaces an expense and its full split set. Fails with
// storage.ErrConflict when any existing split has repayment progress, so
// settled history is never silently rewritten.
func (s *ExpenseService) Update(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	roundExpenseAmounts(expense)
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, err
	}
	return s.store.GetExpense(ctx, expense.ID)
}

// Delete removes an expense and its splits.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteExpense(ctx, id)
}

// List returns every expense the user paid for or participates in, newest
// first.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

// Summary computes the user's overall position. Both totals default to zero
// for users with no expense history.
func (s *ExpenseService) Summary(ctx context.Context, userID int64) (*calculator.Summary, error) {
	paid, err := s.store.SumPaid(ctx, userID)
	if err != nil {
		return nil, err
	}
	owed, err := s.store.SumOwed(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &calculator.Summary{TotalPaid: paid, TotalOwed: owed}, nil
}

// GetDashboard assembles the landing-page counters and recent activity.
func (s *ExpenseService) GetDashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	friends, err := s.store.CountFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.CountGroups(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentExpenses(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		FriendCount:    friends,
		GroupCount:     groups,
		RecentExpenses: recent,
	}, nil
}

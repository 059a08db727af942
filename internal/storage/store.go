// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/models"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist or
	// does not belong to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a mutation collides with existing state,
	// e.g. a duplicate email or an expense edit against partially repaid
	// splits.
	ErrConflict = errors.New("conflict")

	// ErrInsufficientBalance is returned when a wallet debit exceeds the
	// current balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// Store defines the interface for ledger storage operations. This
// abstraction allows swapping storage backends without changing the service
// layer.
//
// All mutations that touch more than one row are atomic: either every write
// is durably applied or none is.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// Friends. AddFriend materializes the symmetric edge as two directed
	// rows and is idempotent.
	AddFriend(ctx context.Context, userID, friendID int64) error
	ListFriends(ctx context.Context, userID int64) ([]*models.User, error)
	CountFriends(ctx context.Context, userID int64) (int64, error)

	// Groups
	CreateGroup(ctx context.Context, group *models.Group, memberIDs []int64) error
	ListGroups(ctx context.Context, userID int64) ([]*models.Group, error)
	CountGroups(ctx context.Context, userID int64) (int64, error)

	// Expenses. UpdateExpense replaces the split set wholesale and fails
	// with ErrConflict if any existing split has repayment progress.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, userID int64) ([]*models.Expense, error)
	RecentExpenses(ctx context.Context, userID int64, limit int) ([]*models.Expense, error)

	// Balance inputs. Sums are computed in Go over fetched amounts so the
	// decimal arithmetic stays exact.
	SumPaid(ctx context.Context, userID int64) (decimal.Decimal, error)
	SumOwed(ctx context.Context, userID int64) (decimal.Decimal, error)
	SplitsBetween(ctx context.Context, userID, friendID int64) ([]models.FriendSplit, error)
	OutstandingSplits(ctx context.Context, owerID, creditorID int64) ([]models.OutstandingSplit, error)

	// Wallet. Accounts are created lazily; Credit and Debit atomically
	// update the balance and append exactly one transaction row. SettleDebt
	// combines a debit with an oldest-first allocation across outstanding
	// splits in a single transaction.
	GetOrCreateWallet(ctx context.Context, userID int64) (*models.WalletAccount, error)
	Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*models.WalletAccount, *models.WalletTransaction, error)
	Debit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*models.WalletAccount, *models.WalletTransaction, error)
	WalletTransactions(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error)
	SettleDebt(ctx context.Context, payerID, creditorID int64, amount decimal.Decimal, description string) (*models.SettlementResult, error)

	// Notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID int64, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID int64) error

	// Reminders
	CreateReminder(ctx context.Context, r *models.Reminder) error
	GetReminder(ctx context.Context, userID, reminderID int64) (*models.Reminder, error)
	ListReminders(ctx context.Context, userID int64) ([]*models.Reminder, error)
	UpdateReminder(ctx context.Context, r *models.Reminder) error

	// Budgets
	CreateBudget(ctx context.Context, b *models.Budget) error
	ListBudgets(ctx context.Context, userID int64) ([]*models.Budget, error)

	// Badges
	IncrementCounter(ctx context.Context, userID int64, counter string) error
	GetBadgeCounts(ctx context.Context, userID int64) (*models.BadgeCounts, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)

	// Close releases any resources held by the store.
	Close() error
}

package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/events"
	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
	"github.com/nexoapp/nexo/internal/storage/sqlite"
)

// newTestStore creates a store backed by a real sqlite file in a temp dir.
func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// capturePublisher records pushed events for assertions.
type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func newTestNotifier(store storage.Store) (*NotificationService, *capturePublisher) {
	pub := &capturePublisher{}
	return NewNotificationService(store, pub), pub
}

func createUser(t *testing.T, store storage.Store, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email, PasswordHash: "x"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func addExpense(t *testing.T, store storage.Store, payerID int64, date, amount string, owed map[int64]string) *models.Expense {
	t.Helper()
	expense := &models.Expense{
		Description: "test expense",
		Amount:      dec(t, amount),
		Date:        date,
		PaidBy:      payerID,
	}
	for userID, share := range owed {
		expense.Splits = append(expense.Splits, models.Split{
			UserID:     userID,
			AmountOwed: dec(t, share),
		})
	}
	if err := store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return expense
}

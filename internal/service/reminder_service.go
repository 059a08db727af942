package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// ReminderService manages payment reminders. Paying a reminder goes through
// the wallet's settlement path so the ledger semantics stay in one place.
type ReminderService struct {
	store    storage.Store
	wallet   *WalletService
	notifier *NotificationService
}

// NewReminderService creates a new reminder service.
func NewReminderService(store storage.Store, wallet *WalletService, notifier *NotificationService) *ReminderService {
	return &ReminderService{store: store, wallet: wallet, notifier: notifier}
}

// Create records a reminder the user keeps against a friend.
func (s *ReminderService) Create(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	reminder.Amount = reminder.Amount.Round(2)
	if !reminder.Amount.IsPositive() {
		return nil, invalidf("amount must be positive")
	}
	if reminder.DueDate != "" {
		if _, err := time.Parse("2006-01-02", reminder.DueDate); err != nil {
			return nil, invalidf("due date must be YYYY-MM-DD")
		}
	}
	if _, err := s.store.GetUserByID(ctx, reminder.FriendID); err != nil {
		return nil, err
	}

	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// List returns the user's reminders, unpaid first.
func (s *ReminderService) List(ctx context.Context, userID int64) ([]*models.Reminder, error) {
	return s.store.ListReminders(ctx, userID)
}

// Send pushes a reminder to the friend it targets. The reminder row itself
// is unchanged; only a notification is produced.
func (s *ReminderService) Send(ctx context.Context, userID, reminderID int64) error {
	reminder, err := s.store.GetReminder(ctx, userID, reminderID)
	if err != nil {
		return err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	return s.notifier.Notify(ctx, reminder.FriendID, models.NotifyReminderSent,
		"Payment reminder",
		fmt.Sprintf("%s reminds you: %s (%s)", user.Username, reminder.Description, reminder.Amount),
		map[string]any{"reminderId": reminder.ID, "amount": reminder.Amount})
}

// MarkPaid flags one of the user's reminders as settled outside the app.
func (s *ReminderService) MarkPaid(ctx context.Context, userID, reminderID int64) error {
	reminder, err := s.store.GetReminder(ctx, userID, reminderID)
	if err != nil {
		return err
	}
	reminder.Paid = true
	return s.store.UpdateReminder(ctx, reminder)
}

// Pay settles the reminder from the user's wallet. The debit and the
// allocation against outstanding expenses happen atomically; the reminder is
// marked paid only after that succeeds.
func (s *ReminderService) Pay(ctx context.Context, userID, reminderID int64) (*models.SettlementResult, error) {
	reminder, err := s.store.GetReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.Paid {
		return nil, invalidf("reminder already paid")
	}

	result, err := s.wallet.PayDebt(ctx, userID, reminder.FriendID, reminder.Amount, reminder.Description)
	if err != nil {
		return nil, err
	}

	reminder.Paid = true
	if err := s.store.UpdateReminder(ctx, reminder); err != nil {
		// The payment went through; surface the stale flag rather than the
		// money movement failing.
		slog.Error("failed to mark reminder paid after settlement",
			"reminder_id", reminder.ID, "error", err)
	}
	return result, nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nexoapp/nexo/internal/calculator"
	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

func TestWalletService_CreditAndDebit(t *testing.T) {
	store := newTestStore(t)
	notifier, _ := newTestNotifier(store)
	svc := NewWalletService(store, notifier)
	ctx := context.Background()

	user := createUser(t, store, "alice", "alice@wallet.test")

	t.Run("credit rejects non-positive amounts", func(t *testing.T) {
		for _, amount := range []string{"0", "-5"} {
			_, _, err := svc.Credit(ctx, user.ID, dec(t, amount), "")
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Errorf("Credit(%s) error = %v, want ValidationError", amount, err)
			}
		}
	})

	t.Run("credit then debit adjusts balance", func(t *testing.T) {
		wallet, txn, err := svc.Credit(ctx, user.ID, dec(t, "100"), "top up")
		if err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
		if !wallet.Balance.Equal(dec(t, "100")) {
			t.Errorf("balance = %s, want 100", wallet.Balance)
		}
		if txn.Reference == "" {
			t.Error("transaction missing reference")
		}

		wallet, _, err = svc.Debit(ctx, user.ID, dec(t, "30"), "")
		if err != nil {
			t.Fatalf("Debit failed: %v", err)
		}
		if !wallet.Balance.Equal(dec(t, "70")) {
			t.Errorf("balance = %s, want 70", wallet.Balance)
		}
	})

	t.Run("amounts are rounded to two decimals", func(t *testing.T) {
		wallet, _, err := svc.Credit(ctx, user.ID, dec(t, "0.005"), "dust")
		if err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
		if !wallet.Balance.Equal(dec(t, "70.01")) {
			t.Errorf("balance = %s, want 70.01", wallet.Balance)
		}
	})

	t.Run("over-debit fails", func(t *testing.T) {
		_, _, err := svc.Debit(ctx, user.ID, dec(t, "1000"), "")
		if !errors.Is(err, storage.ErrInsufficientBalance) {
			t.Errorf("error = %v, want ErrInsufficientBalance", err)
		}
	})
}

func TestWalletService_PayDebt(t *testing.T) {
	store := newTestStore(t)
	notifier, pub := newTestNotifier(store)
	svc := NewWalletService(store, notifier)
	ctx := context.Background()

	alice := createUser(t, store, "alice", "alice@paydebt.test")
	bob := createUser(t, store, "bob", "bob@paydebt.test")

	addExpense(t, store, alice.ID, "2025-01-01", "50", map[int64]string{bob.ID: "50"})
	addExpense(t, store, alice.ID, "2025-01-05", "30", map[int64]string{bob.ID: "30"})

	if _, _, err := svc.Credit(ctx, bob.ID, dec(t, "100"), "top up"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	t.Run("settles oldest first and notifies both parties", func(t *testing.T) {
		result, err := svc.PayDebt(ctx, bob.ID, alice.ID, dec(t, "60"), "")
		if err != nil {
			t.Fatalf("PayDebt failed: %v", err)
		}
		if !result.NewBalance.Equal(dec(t, "40")) {
			t.Errorf("new balance = %s, want 40", result.NewBalance)
		}
		if len(result.SplitsUpdated) != 2 {
			t.Fatalf("splits updated = %d, want 2", len(result.SplitsUpdated))
		}
		if !result.SplitsUpdated[0].NewAmount.Equal(dec(t, "0")) {
			t.Errorf("oldest split now %s, want 0", result.SplitsUpdated[0].NewAmount)
		}
		if !result.SplitsUpdated[1].NewAmount.Equal(dec(t, "20")) {
			t.Errorf("newer split now %s, want 20", result.SplitsUpdated[1].NewAmount)
		}

		// Persisted notifications for creditor and payer, plus pushes.
		for _, userID := range []int64{alice.ID, bob.ID} {
			notifications, err := store.ListNotifications(ctx, userID, 10)
			if err != nil {
				t.Fatalf("ListNotifications failed: %v", err)
			}
			found := false
			for _, n := range notifications {
				if n.Type == models.NotifyPaymentApplied {
					found = true
				}
			}
			if !found {
				t.Errorf("user %d has no payment_applied notification", userID)
			}
		}
		if len(pub.events) != 2 {
			t.Errorf("pushed events = %d, want 2", len(pub.events))
		}

		counts, err := store.GetBadgeCounts(ctx, bob.ID)
		if err != nil {
			t.Fatalf("GetBadgeCounts failed: %v", err)
		}
		if counts.DebtsSettled != 1 {
			t.Errorf("debts settled counter = %d, want 1", counts.DebtsSettled)
		}
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		_, err := svc.PayDebt(ctx, bob.ID, alice.ID, dec(t, "21"), "")
		if !errors.Is(err, calculator.ErrOverpayment) {
			t.Errorf("error = %v, want ErrOverpayment", err)
		}
	})

	t.Run("unknown creditor rejected", func(t *testing.T) {
		_, err := svc.PayDebt(ctx, bob.ID, 424242, dec(t, "5"), "")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("zero creditor id degrades to plain debit", func(t *testing.T) {
		result, err := svc.PayDebt(ctx, bob.ID, 0, dec(t, "10"), "cash settlement")
		if err != nil {
			t.Fatalf("PayDebt failed: %v", err)
		}
		if !result.NewBalance.Equal(dec(t, "30")) {
			t.Errorf("new balance = %s, want 30", result.NewBalance)
		}
		if len(result.SplitsUpdated) != 0 {
			t.Errorf("splits updated = %d, want 0", len(result.SplitsUpdated))
		}
	})
}

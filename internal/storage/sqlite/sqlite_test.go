package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "nexo-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email, PasswordHash: "x"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// addExpense records an expense paid by payer with one split per (ower,
// amount) pair.
func addExpense(t *testing.T, store *SQLiteStore, payer int64, date, amount string, splits map[int64]string) *models.Expense {
	t.Helper()
	expense := &models.Expense{
		Description: "test expense",
		Amount:      dec(amount),
		Date:        date,
		PaidBy:      payer,
	}
	for ower, owed := range splits {
		expense.Splits = append(expense.Splits, models.Split{UserID: ower, AmountOwed: dec(owed)})
	}
	if err := store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return expense
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser assigns id and defaults", func(t *testing.T) {
		user := createUser(t, store, "alice", "alice@example.com")
		if user.ID == 0 {
			t.Error("expected user ID to be assigned")
		}
		if user.Currency != "INR" {
			t.Errorf("currency = %s, want INR", user.Currency)
		}
		if user.CreatedAt == 0 {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("duplicate email maps to ErrConflict", func(t *testing.T) {
		createUser(t, store, "bob", "bob@example.com")
		err := store.CreateUser(ctx, &models.User{Username: "bob2", Email: "bob@example.com", PasswordHash: "x"})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
	})

	t.Run("GetUserByID returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, 99999)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_Friends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice", "alice@friends.test")
	bob := createUser(t, store, "bob", "bob@friends.test")

	t.Run("AddFriend inserts both directions", func(t *testing.T) {
		if err := store.AddFriend(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}

		aliceFriends, err := store.ListFriends(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(aliceFriends) != 1 || aliceFriends[0].ID != bob.ID {
			t.Errorf("alice friends = %+v, want [bob]", aliceFriends)
		}

		bobFriends, err := store.ListFriends(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(bobFriends) != 1 || bobFriends[0].ID != alice.ID {
			t.Errorf("bob friends = %+v, want [alice]", bobFriends)
		}
	})

	t.Run("AddFriend is idempotent", func(t *testing.T) {
		if err := store.AddFriend(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("repeated AddFriend failed: %v", err)
		}
		count, err := store.CountFriends(ctx, alice.ID)
		if err != nil {
			t.Fatalf("CountFriends failed: %v", err)
		}
		if count != 1 {
			t.Errorf("friend count = %d, want 1", count)
		}
	})
}

func TestSQLiteStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice", "alice@expenses.test")
	bob := createUser(t, store, "bob", "bob@expenses.test")

	t.Run("CreateExpense persists splits with original amounts", func(t *testing.T) {
		expense := addExpense(t, store, alice.ID, "2025-02-01", "90",
			map[int64]string{bob.ID: "45", alice.ID: "45"})

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if len(got.Splits) != 2 {
			t.Fatalf("splits = %d, want 2", len(got.Splits))
		}
		for _, split := range got.Splits {
			if !split.AmountOwed.Equal(split.Original) {
				t.Errorf("fresh split %d has owed %s != original %s",
					split.ID, split.AmountOwed, split.Original)
			}
		}
	})

	t.Run("UpdateExpense replaces splits wholesale", func(t *testing.T) {
		expense := addExpense(t, store, alice.ID, "2025-02-02", "30",
			map[int64]string{bob.ID: "30"})

		expense.Description = "edited"
		expense.Splits = []models.Split{
			{UserID: bob.ID, AmountOwed: dec("20")},
			{UserID: alice.ID, AmountOwed: dec("10")},
		}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Description != "edited" {
			t.Errorf("description = %s, want edited", got.Description)
		}
		if len(got.Splits) != 2 {
			t.Errorf("splits = %d, want 2", len(got.Splits))
		}
	})

	t.Run("UpdateExpense blocked by repayment progress", func(t *testing.T) {
		// Dedicated pair so the oldest-first allocation cannot land on
		// another subtest's expense.
		carol := createUser(t, store, "carol", "carol@expenses.test")
		dave := createUser(t, store, "dave", "dave@expenses.test")
		expense := addExpense(t, store, carol.ID, "2025-02-03", "50",
			map[int64]string{dave.ID: "50"})

		if _, _, err := store.Credit(ctx, dave.ID, dec("50"), "top up"); err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
		if _, err := store.SettleDebt(ctx, dave.ID, carol.ID, dec("10"), "partial"); err != nil {
			t.Fatalf("SettleDebt failed: %v", err)
		}

		expense.Description = "should not apply"
		err := store.UpdateExpense(ctx, expense)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("DeleteExpense removes expense and splits", func(t *testing.T) {
		expense := addExpense(t, store, alice.ID, "2025-02-04", "10",
			map[int64]string{bob.ID: "10"})

		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteExpense on unknown id returns ErrNotFound", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, 424242); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_Balances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice", "alice@balances.test")
	bob := createUser(t, store, "bob", "bob@balances.test")

	t.Run("sums are zero for a brand-new user", func(t *testing.T) {
		paid, err := store.SumPaid(ctx, alice.ID)
		if err != nil {
			t.Fatalf("SumPaid failed: %v", err)
		}
		owed, err := store.SumOwed(ctx, alice.ID)
		if err != nil {
			t.Fatalf("SumOwed failed: %v", err)
		}
		if !paid.IsZero() || !owed.IsZero() {
			t.Errorf("paid = %s, owed = %s, want both zero", paid, owed)
		}
	})

	t.Run("sums reflect expenses and splits", func(t *testing.T) {
		addExpense(t, store, alice.ID, "2025-03-01", "100",
			map[int64]string{bob.ID: "60", alice.ID: "40"})

		paid, err := store.SumPaid(ctx, alice.ID)
		if err != nil {
			t.Fatalf("SumPaid failed: %v", err)
		}
		if !paid.Equal(dec("100")) {
			t.Errorf("paid = %s, want 100", paid)
		}

		owed, err := store.SumOwed(ctx, bob.ID)
		if err != nil {
			t.Fatalf("SumOwed failed: %v", err)
		}
		if !owed.Equal(dec("60")) {
			t.Errorf("owed = %s, want 60", owed)
		}
	})

	t.Run("SplitsBetween covers both directions", func(t *testing.T) {
		addExpense(t, store, bob.ID, "2025-03-02", "25",
			map[int64]string{alice.ID: "25"})

		splits, err := store.SplitsBetween(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("SplitsBetween failed: %v", err)
		}
		if len(splits) != 2 {
			t.Fatalf("splits = %d, want 2", len(splits))
		}
	})

	t.Run("OutstandingSplits ordered oldest first", func(t *testing.T) {
		carol := createUser(t, store, "carol", "carol@balances.test")
		addExpense(t, store, alice.ID, "2025-04-10", "30", map[int64]string{carol.ID: "30"})
		addExpense(t, store, alice.ID, "2025-04-01", "20", map[int64]string{carol.ID: "20"})

		splits, err := store.OutstandingSplits(ctx, carol.ID, alice.ID)
		if err != nil {
			t.Fatalf("OutstandingSplits failed: %v", err)
		}
		if len(splits) != 2 {
			t.Fatalf("splits = %d, want 2", len(splits))
		}
		if splits[0].ExpenseDate != "2025-04-01" {
			t.Errorf("first split date = %s, want 2025-04-01", splits[0].ExpenseDate)
		}
	})
}

func TestSQLiteStore_Wallet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice", "alice@wallet.test")

	t.Run("GetOrCreateWallet creates zero balance lazily", func(t *testing.T) {
		wallet, err := store.GetOrCreateWallet(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetOrCreateWallet failed: %v", err)
		}
		if !wallet.Balance.IsZero() {
			t.Errorf("balance = %s, want 0", wallet.Balance)
		}

		again, err := store.GetOrCreateWallet(ctx, alice.ID)
		if err != nil {
			t.Fatalf("second GetOrCreateWallet failed: %v", err)
		}
		if again.ID != wallet.ID {
			t.Errorf("wallet recreated: id %d then %d", wallet.ID, again.ID)
		}
	})

	t.Run("Credit then Debit updates balance and appends transactions", func(t *testing.T) {
		wallet, txn, err := store.Credit(ctx, alice.ID, dec("100.50"), "top up")
		if err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
		if !wallet.Balance.Equal(dec("100.50")) {
			t.Errorf("balance = %s, want 100.50", wallet.Balance)
		}
		if txn.Type != models.TxCredit || !txn.Amount.Equal(dec("100.50")) {
			t.Errorf("transaction = %+v, want credit 100.50", txn)
		}
		if txn.Reference == "" {
			t.Error("expected transaction reference to be assigned")
		}

		wallet, txn, err = store.Debit(ctx, alice.ID, dec("40.25"), "spend")
		if err != nil {
			t.Fatalf("Debit failed: %v", err)
		}
		if !wallet.Balance.Equal(dec("60.25")) {
			t.Errorf("balance = %s, want 60.25", wallet.Balance)
		}
		if txn.Type != models.TxDebit {
			t.Errorf("transaction type = %s, want debit", txn.Type)
		}

		txns, err := store.WalletTransactions(ctx, alice.ID, 10)
		if err != nil {
			t.Fatalf("WalletTransactions failed: %v", err)
		}
		if len(txns) != 2 {
			t.Errorf("transactions = %d, want 2", len(txns))
		}
	})

	t.Run("Debit beyond balance fails without writes", func(t *testing.T) {
		before, err := store.GetOrCreateWallet(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetOrCreateWallet failed: %v", err)
		}

		_, _, err = store.Debit(ctx, alice.ID, before.Balance.Add(dec("0.01")), "too much")
		if !errors.Is(err, storage.ErrInsufficientBalance) {
			t.Fatalf("error = %v, want ErrInsufficientBalance", err)
		}

		after, err := store.GetOrCreateWallet(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetOrCreateWallet failed: %v", err)
		}
		if !after.Balance.Equal(before.Balance) {
			t.Errorf("balance changed from %s to %s on failed debit", before.Balance, after.Balance)
		}

		txns, err := store.WalletTransactions(ctx, alice.ID, 10)
		if err != nil {
			t.Fatalf("WalletTransactions failed: %v", err)
		}
		for _, txn := range txns {
			if txn.Description == "too much" {
				t.Error("failed debit left a transaction row")
			}
		}
	})

	t.Run("balance equals signed sum of transactions", func(t *testing.T) {
		wallet, err := store.GetOrCreateWallet(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetOrCreateWallet failed: %v", err)
		}
		txns, err := store.WalletTransactions(ctx, alice.ID, 100)
		if err != nil {
			t.Fatalf("WalletTransactions failed: %v", err)
		}

		sum := decimal.Zero
		for _, txn := range txns {
			if txn.Type == models.TxCredit {
				sum = sum.Add(txn.Amount)
			} else {
				sum = sum.Sub(txn.Amount)
			}
		}
		if !sum.Equal(wallet.Balance) {
			t.Errorf("transaction sum %s != balance %s", sum, wallet.Balance)
		}
	})
}

func TestSQLiteStore_Reminders(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	alice := createUser(t, store, "alice", "alice@reminders.test")
	bob := createUser(t, store, "bob", "bob@reminders.test")

	reminder := &models.Reminder{
		UserID:      alice.ID,
		FriendID:    bob.ID,
		Amount:      dec("25.00"),
		Description: "movie tickets",
		DueDate:     "2025-09-15",
	}
	if err := store.CreateReminder(ctx, reminder); err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}

	t.Run("GetReminder loads by id for its owner", func(t *testing.T) {
		got, err := store.GetReminder(ctx, alice.ID, reminder.ID)
		if err != nil {
			t.Fatalf("GetReminder failed: %v", err)
		}
		if got.FriendID != bob.ID || !got.Amount.Equal(dec("25.00")) || got.Paid {
			t.Errorf("GetReminder = %+v, want bob's unpaid 25.00 reminder", got)
		}
	})

	t.Run("GetReminder hides other users' reminders", func(t *testing.T) {
		if _, err := store.GetReminder(ctx, bob.ID, reminder.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetReminder on unknown id returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetReminder(ctx, alice.ID, 9999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLiteStore_Leaderboard(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	alice := createUser(t, store, "alice", "alice@badges.test")
	bob := createUser(t, store, "bob", "bob@badges.test")
	carol := createUser(t, store, "carol", "carol@badges.test")

	bump := func(userID int64, counter string, times int) {
		t.Helper()
		for i := 0; i < times; i++ {
			if err := store.IncrementCounter(ctx, userID, counter); err != nil {
				t.Fatalf("IncrementCounter failed: %v", err)
			}
		}
	}

	// alice: First Expense + Serial Spender + Social Starter = 3 badges.
	bump(alice.ID, models.CounterExpensesAdded, 10)
	bump(alice.ID, models.CounterFriendsAdded, 1)
	// bob and carol: one badge each, tie broken by user id.
	bump(bob.ID, models.CounterDebtsSettled, 1)
	bump(carol.ID, models.CounterExpensesAdded, 1)

	entries, err := store.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].UserID != alice.ID || entries[0].BadgeCount != 3 {
		t.Errorf("entries[0] = %+v, want alice with 3 badges", entries[0])
	}
	if entries[1].UserID != bob.ID || entries[1].BadgeCount != 1 {
		t.Errorf("entries[1] = %+v, want bob with 1 badge", entries[1])
	}
	if entries[2].UserID != carol.ID || entries[2].BadgeCount != 1 {
		t.Errorf("entries[2] = %+v, want carol with 1 badge", entries[2])
	}

	t.Run("limit caps the ranking", func(t *testing.T) {
		top, err := store.Leaderboard(ctx, 1)
		if err != nil {
			t.Fatalf("Leaderboard failed: %v", err)
		}
		if len(top) != 1 || top[0].UserID != alice.ID {
			t.Errorf("top = %+v, want only alice", top)
		}
	})
}

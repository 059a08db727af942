package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/calculator"
	"github.com/nexoapp/nexo/internal/metrics"
	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// WalletService manages virtual wallet balances and the settlement flow
// built on top of them.
type WalletService struct {
	store    storage.Store
	notifier *NotificationService
}

// NewWalletService creates a new wallet service.
func NewWalletService(store storage.Store, notifier *NotificationService) *WalletService {
	return &WalletService{store: store, notifier: notifier}
}

// WalletView is a wallet with its recent transactions.
type WalletView struct {
	Balance      decimal.Decimal             `json:"balance"`
	Currency     string                      `json:"currency"`
	Transactions []*models.WalletTransaction `json:"transactions"`
}

// Get returns the user's wallet, creating a zero-balance account on first
// access.
func (s *WalletService) Get(ctx context.Context, userID int64) (*WalletView, error) {
	wallet, err := s.store.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.store.WalletTransactions(ctx, userID, 50)
	if err != nil {
		return nil, err
	}
	return &WalletView{
		Balance:      wallet.Balance,
		Currency:     wallet.Currency,
		Transactions: transactions,
	}, nil
}

// Transactions returns the user's transaction history, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error) {
	return s.store.WalletTransactions(ctx, userID, limit)
}

// Credit adds funds to the user's wallet.
func (s *WalletService) Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*models.WalletAccount, *models.WalletTransaction, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, nil, invalidf("amount must be positive")
	}
	if description == "" {
		description = "Wallet top-up"
	}

	wallet, txn, err := s.store.Credit(ctx, userID, amount, description)
	if err != nil {
		return nil, nil, err
	}
	metrics.WalletTransactions.WithLabelValues(models.TxCredit).Inc()
	return wallet, txn, nil
}

// Debit removes funds from the user's wallet. Fails with
// storage.ErrInsufficientBalance when amount exceeds the balance.
func (s *WalletService) Debit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*models.WalletAccount, *models.WalletTransaction, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, nil, invalidf("amount must be positive")
	}
	if description == "" {
		description = "Wallet debit"
	}

	wallet, txn, err := s.store.Debit(ctx, userID, amount, description)
	if err != nil {
		return nil, nil, err
	}
	metrics.WalletTransactions.WithLabelValues(models.TxDebit).Inc()
	return wallet, txn, nil
}

// PayDebt debits the payer's wallet and applies the amount to what they owe
// the creditor, oldest expense first, in one atomic step. With creditorID
// zero there is no allocation target and the call degrades to a plain debit.
func (s *WalletService) PayDebt(ctx context.Context, payerID, creditorID int64, amount decimal.Decimal, description string) (*models.SettlementResult, error) {
	amount = amount.Round(2)
	if description == "" {
		description = "Debt payment"
	}

	if creditorID == 0 {
		wallet, txn, err := s.Debit(ctx, payerID, amount, description)
		if err != nil {
			return nil, err
		}
		return &models.SettlementResult{
			NewBalance:  wallet.Balance,
			Transaction: txn,
		}, nil
	}

	if _, err := s.store.GetUserByID(ctx, creditorID); err != nil {
		return nil, err
	}

	result, err := s.store.SettleDebt(ctx, payerID, creditorID, amount, description)
	if err != nil {
		s.countRejection(err)
		return nil, err
	}
	metrics.Settlements.Inc()
	metrics.WalletTransactions.WithLabelValues(models.TxDebit).Inc()

	if err := s.store.IncrementCounter(ctx, payerID, models.CounterDebtsSettled); err != nil {
		slog.Warn("failed to bump settlement counter", "user_id", payerID, "error", err)
	}
	s.notifySettlement(ctx, payerID, creditorID, amount, result)

	return result, nil
}

func (s *WalletService) countRejection(err error) {
	switch {
	case errors.Is(err, calculator.ErrInvalidAmount):
		metrics.SettlementRejections.WithLabelValues("invalid_amount").Inc()
	case errors.Is(err, calculator.ErrOverpayment):
		metrics.SettlementRejections.WithLabelValues("overpayment").Inc()
	case errors.Is(err, storage.ErrInsufficientBalance):
		metrics.SettlementRejections.WithLabelValues("insufficient_balance").Inc()
	}
}

func (s *WalletService) notifySettlement(ctx context.Context, payerID, creditorID int64, amount decimal.Decimal, result *models.SettlementResult) {
	payer, err := s.store.GetUserByID(ctx, payerID)
	if err != nil {
		slog.Warn("failed to load payer for notification", "user_id", payerID, "error", err)
		return
	}

	data := map[string]any{
		"amount":        amount,
		"splitsUpdated": len(result.SplitsUpdated),
	}
	if result.Transaction != nil {
		data["reference"] = result.Transaction.Reference
	}

	err = s.notifier.Notify(ctx, creditorID, models.NotifyPaymentApplied,
		"Payment received",
		fmt.Sprintf("%s paid you %s", payer.Username, amount),
		data)
	if err != nil {
		slog.Warn("failed to notify creditor", "user_id", creditorID, "error", err)
	}

	err = s.notifier.Notify(ctx, payerID, models.NotifyPaymentApplied,
		"Payment applied",
		fmt.Sprintf("Your payment of %s was applied to %d expense(s)", amount, len(result.SplitsUpdated)),
		data)
	if err != nil {
		slog.Warn("failed to notify payer", "user_id", payerID, "error", err)
	}
}

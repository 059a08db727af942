// Package metrics exposes Prometheus counters for the ledger's hot paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WalletTransactions counts successful wallet mutations by type
	// (credit, debit).
	WalletTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexo_wallet_transactions_total",
		Help: "Successful wallet transactions by type.",
	}, []string{"type"})

	// Settlements counts successful debt settlements.
	Settlements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nexo_settlements_total",
		Help: "Successful debt settlements.",
	})

	// SettlementRejections counts settlements refused before any state
	// change, by reason (invalid_amount, overpayment, insufficient_balance).
	SettlementRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexo_settlement_rejections_total",
		Help: "Settlements rejected without mutation, by reason.",
	}, []string{"reason"})

	// NotificationsSent counts persisted notifications by type.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nexo_notifications_total",
		Help: "Notifications persisted, by type.",
	}, []string{"type"})
)

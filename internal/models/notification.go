package models

// Notification is a persisted message for a user. Persistence is
// authoritative; the realtime push is best-effort on top of it.
type Notification struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Message string `json:"message"`

	// Data is an optional JSON payload specific to the notification type.
	Data string `json:"data,omitempty"`

	IsRead    bool  `json:"is_read"`
	CreatedAt int64 `json:"created_at"`
}

// Notification types emitted by the core.
const (
	NotifyPaymentApplied = "payment_applied"
	NotifyReminderSent   = "reminder_sent"
	NotifyExpenseAdded   = "expense_added"
	NotifyBadgeEarned    = "badge_earned"
)

package models

// Badge counter kinds. Counters are simple per-user tallies of activity;
// badges are awarded when a counter crosses a threshold.
const (
	CounterExpensesAdded = "expenses_added"
	CounterDebtsSettled  = "debts_settled"
	CounterFriendsAdded  = "friends_added"
)

// BadgeCounts holds a user's activity tallies.
type BadgeCounts struct {
	UserID        int64 `json:"user_id"`
	ExpensesAdded int64 `json:"expenses_added"`
	DebtsSettled  int64 `json:"debts_settled"`
	FriendsAdded  int64 `json:"friends_added"`
}

// Badges returns the badge names earned for the current counts.
func (c BadgeCounts) Badges() []string {
	var badges []string
	if c.ExpensesAdded >= 1 {
		badges = append(badges, "First Expense")
	}
	if c.ExpensesAdded >= 10 {
		badges = append(badges, "Serial Spender")
	}
	if c.DebtsSettled >= 1 {
		badges = append(badges, "Debt Free Start")
	}
	if c.DebtsSettled >= 5 {
		badges = append(badges, "Settler")
	}
	if c.FriendsAdded >= 1 {
		badges = append(badges, "Social Starter")
	}
	if c.FriendsAdded >= 5 {
		badges = append(badges, "Squad Builder")
	}
	return badges
}

// LeaderboardEntry is one row of the badge leaderboard.
type LeaderboardEntry struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	BadgeCount int    `json:"badge_count"`
}

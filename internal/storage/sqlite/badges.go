package sqlite

import (
	"context"
	"fmt"
	"sort"

	"github.com/nexoapp/nexo/internal/models"
)

// IncrementCounter bumps a user's activity tally by one, creating the row on
// first use.
func (s *SQLiteStore) IncrementCounter(ctx context.Context, userID int64, counter string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO badge_counters (user_id, counter, count) VALUES (?, ?, 1)
		ON CONFLICT (user_id, counter) DO UPDATE SET count = count + 1`,
		userID, counter,
	)
	if err != nil {
		return fmt.Errorf("failed to increment counter %s: %w", counter, err)
	}
	return nil
}

// GetBadgeCounts returns a user's activity tallies; missing counters read as
// zero.
func (s *SQLiteStore) GetBadgeCounts(ctx context.Context, userID int64) (*models.BadgeCounts, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT counter, count FROM badge_counters WHERE user_id = ?", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge counts: %w", err)
	}
	defer rows.Close()

	counts := &models.BadgeCounts{UserID: userID}
	for rows.Next() {
		var counter string
		var count int64
		if err := rows.Scan(&counter, &count); err != nil {
			return nil, fmt.Errorf("failed to scan badge counter: %w", err)
		}
		switch counter {
		case models.CounterExpensesAdded:
			counts.ExpensesAdded = count
		case models.CounterDebtsSettled:
			counts.DebtsSettled = count
		case models.CounterFriendsAdded:
			counts.FriendsAdded = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badge counters: %w", err)
	}
	return counts, nil
}

// Leaderboard ranks users by number of badges earned.
func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, bc.counter, bc.count
		FROM badge_counters bc
		JOIN users u ON u.id = bc.user_id
		ORDER BY u.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge counters: %w", err)
	}
	defer rows.Close()

	// Rows arrive grouped by user, one row per counter.
	names := make(map[int64]string)
	counts := make(map[int64]*models.BadgeCounts)
	var order []int64
	for rows.Next() {
		var (
			id      int64
			name    string
			counter string
			count   int64
		)
		if err := rows.Scan(&id, &name, &counter, &count); err != nil {
			return nil, fmt.Errorf("failed to scan badge counter: %w", err)
		}
		c, ok := counts[id]
		if !ok {
			c = &models.BadgeCounts{UserID: id}
			counts[id] = c
			names[id] = name
			order = append(order, id)
		}
		switch counter {
		case models.CounterExpensesAdded:
			c.ExpensesAdded = count
		case models.CounterDebtsSettled:
			c.DebtsSettled = count
		case models.CounterFriendsAdded:
			c.FriendsAdded = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badge counters: %w", err)
	}

	var entries []models.LeaderboardEntry
	for _, id := range order {
		entries = append(entries, models.LeaderboardEntry{
			UserID:     id,
			Username:   names[id],
			BadgeCount: len(counts[id].Badges()),
		})
	}

	// Highest badge count first; ties ordered by user id for determinism.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BadgeCount != entries[j].BadgeCount {
			return entries[i].BadgeCount > entries[j].BadgeCount
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

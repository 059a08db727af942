package sqlite

import (
	"context"
	"fmt"

	"github.com/nexoapp/nexo/internal/models"
)

// AddFriend inserts both directions of the friendship edge. INSERT OR IGNORE
// makes repeated adds idempotent.
func (s *SQLiteStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, pair := range [][2]int64{{userID, friendID}, {friendID, userID}} {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO friends (user_id, friend_id) VALUES (?, ?)",
			pair[0], pair[1],
		)
		if err != nil {
			return fmt.Errorf("failed to insert friend edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListFriends returns the users linked to userID.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID int64) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, u.currency, u.created_at
		FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY u.username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Currency, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}

// CountFriends returns the number of friends a user has.
func (s *SQLiteStore) CountFriends(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friends WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count friends: %w", err)
	}
	return count, nil
}

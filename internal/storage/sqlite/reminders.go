package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// CreateReminder persists a payment reminder.
func (s *SQLiteStore) CreateReminder(ctx context.Context, r *models.Reminder) error {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO reminders (user_id, friend_id, amount, description, due_date, paid, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.UserID, r.FriendID, r.Amount, r.Description, r.DueDate, r.Paid, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read reminder id: %w", err)
	}
	return nil
}

// GetReminder loads a single reminder scoped to its owner.
func (s *SQLiteStore) GetReminder(ctx context.Context, userID, reminderID int64) (*models.Reminder, error) {
	r := &models.Reminder{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, friend_id, amount, description, due_date, paid, created_at
		FROM reminders
		WHERE id = ? AND user_id = ?`,
		reminderID, userID,
	).Scan(&r.ID, &r.UserID, &r.FriendID, &r.Amount,
		&r.Description, &r.DueDate, &r.Paid, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reminder %d: %w", reminderID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// ListReminders returns the user's reminders, unpaid first, newest first
// within each.
func (s *SQLiteStore) ListReminders(ctx context.Context, userID int64) ([]*models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, friend_id, amount, description, due_date, paid, created_at
		FROM reminders
		WHERE user_id = ?
		ORDER BY paid ASC, created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		r := &models.Reminder{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.FriendID, &r.Amount,
			&r.Description, &r.DueDate, &r.Paid, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return reminders, nil
}

// UpdateReminder rewrites a reminder's mutable fields. The user id guard
// keeps callers inside their own rows.
func (s *SQLiteStore) UpdateReminder(ctx context.Context, r *models.Reminder) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET amount = ?, description = ?, due_date = ?, paid = ? WHERE id = ? AND user_id = ?",
		r.Amount, r.Description, r.DueDate, r.Paid, r.ID, r.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reminder %d: %w", r.ID, storage.ErrNotFound)
	}
	return nil
}

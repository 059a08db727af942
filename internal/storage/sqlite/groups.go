package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/models"
)

// CreateGroup persists a group and its membership in one transaction. The
// owner is always a member; duplicate member ids are tolerated.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group, memberIDs []int64) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO groups (name, owner_id, created_at) VALUES (?, ?, ?)",
		group.Name, group.OwnerID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	group.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read group id: %w", err)
	}

	members := append([]int64{group.OwnerID}, memberIDs...)
	for _, uid := range members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
			group.ID, uid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListGroups returns the groups a user belongs to, with member usernames and
// the total of expenses recorded against each group.
func (s *SQLiteStore) ListGroups(ctx context.Context, userID int64) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.owner_id, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{TotalExpenses: decimal.Zero}
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, g := range groups {
		memberRows, err := s.db.QueryContext(ctx, `
			SELECT u.username
			FROM group_members gm
			JOIN users u ON u.id = gm.user_id
			WHERE gm.group_id = ?
			ORDER BY u.username`,
			g.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get group members: %w", err)
		}
		for memberRows.Next() {
			var name string
			if err := memberRows.Scan(&name); err != nil {
				memberRows.Close()
				return nil, fmt.Errorf("failed to scan group member: %w", err)
			}
			g.Members = append(g.Members, name)
		}
		memberRows.Close()
		if err := memberRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate group members: %w", err)
		}

		expenseRows, err := s.db.QueryContext(ctx,
			"SELECT amount FROM expenses WHERE group_id = ?", g.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get group expenses: %w", err)
		}
		for expenseRows.Next() {
			var amount decimal.Decimal
			if err := expenseRows.Scan(&amount); err != nil {
				expenseRows.Close()
				return nil, fmt.Errorf("failed to scan group expense: %w", err)
			}
			g.TotalExpenses = g.TotalExpenses.Add(amount)
		}
		expenseRows.Close()
		if err := expenseRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate group expenses: %w", err)
		}
	}

	return groups, nil
}

// CountGroups returns the number of groups a user belongs to.
func (s *SQLiteStore) CountGroups(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT group_id) FROM group_members WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return count, nil
}

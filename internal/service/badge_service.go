package service

import (
	"context"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// BadgeService reports activity counters and the badges they earn.
type BadgeService struct {
	store storage.Store
}

// NewBadgeService creates a new badge service.
func NewBadgeService(store storage.Store) *BadgeService {
	return &BadgeService{store: store}
}

// UserBadges is a user's counters plus the badge names they have earned.
type UserBadges struct {
	Counts models.BadgeCounts `json:"counts"`
	Badges []string           `json:"badges"`
}

// ForUser returns the user's counters and earned badges.
func (s *BadgeService) ForUser(ctx context.Context, userID int64) (*UserBadges, error) {
	counts, err := s.store.GetBadgeCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserBadges{
		Counts: *counts,
		Badges: counts.Badges(),
	}, nil
}

// Leaderboard ranks users by badge count.
func (s *BadgeService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.Leaderboard(ctx, limit)
}

package service

import (
	"context"
	"log/slog"

	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// GroupService manages reusable sets of users who split expenses together.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new group service.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// Create makes a new group owned by ownerID. The owner is always a member;
// duplicate member ids are collapsed by the store.
func (s *GroupService) Create(ctx context.Context, ownerID int64, name string, memberIDs []int64) (*models.Group, error) {
	if name == "" {
		return nil, invalidf("group name required")
	}

	group := &models.Group{
		Name:    name,
		OwnerID: ownerID,
	}
	if err := s.store.CreateGroup(ctx, group, memberIDs); err != nil {
		slog.Error("failed to create group", "owner_id", ownerID, "error", err)
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID, "owner_id", ownerID)
	return group, nil
}

// List returns the groups the user belongs to, with member names and
// expense totals attached.
func (s *GroupService) List(ctx context.Context, userID int64) ([]*models.Group, error) {
	return s.store.ListGroups(ctx, userID)
}

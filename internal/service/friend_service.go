package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nexoapp/nexo/internal/calculator"
	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// FriendService manages friend edges and pairwise balances.
type FriendService struct {
	store storage.Store
}

// NewFriendService creates a new friend service.
func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store}
}

// FindByEmail looks a user up by email, for the add-friend flow.
func (s *FriendService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	return user, nil
}

// Add creates the friendship between the user and friendID. Both directions
// are materialized; repeating the call is a no-op.
func (s *FriendService) Add(ctx context.Context, userID, friendID int64) error {
	if friendID == userID {
		return invalidf("cannot add yourself as a friend")
	}
	if _, err := s.store.GetUserByID(ctx, friendID); err != nil {
		return err
	}

	if err := s.store.AddFriend(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.store.IncrementCounter(ctx, userID, models.CounterFriendsAdded); err != nil {
		slog.Warn("failed to bump friend counter", "user_id", userID, "error", err)
	}
	return nil
}

// List returns the user's friends ordered by username.
func (s *FriendService) List(ctx context.Context, userID int64) ([]*models.User, error) {
	return s.store.ListFriends(ctx, userID)
}

// Balance nets the open splits between the user and a friend. Positive
// means the friend owes the user. Users with no shared expenses net to
// zero; the friend need not be on the user's friend list.
func (s *FriendService) Balance(ctx context.Context, userID, friendID int64) (decimal.Decimal, error) {
	if _, err := s.store.GetUserByID(ctx, friendID); err != nil {
		return decimal.Zero, err
	}

	splits, err := s.store.SplitsBetween(ctx, userID, friendID)
	if err != nil {
		return decimal.Zero, err
	}

	pair := make([]calculator.FriendSplit, len(splits))
	for i, split := range splits {
		pair[i] = calculator.FriendSplit{
			PayerID:    split.PayerID,
			OwerID:     split.OwerID,
			AmountOwed: split.AmountOwed,
		}
	}
	return calculator.NetBalance(userID, friendID, pair), nil
}

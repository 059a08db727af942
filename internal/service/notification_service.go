package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nexoapp/nexo/internal/events"
	"github.com/nexoapp/nexo/internal/metrics"
	"github.com/nexoapp/nexo/internal/models"
	"github.com/nexoapp/nexo/internal/storage"
)

// NotificationService persists notifications and pushes them to live
// subscribers. The persisted row is authoritative; the push is best effort
// and never fails the calling operation.
type NotificationService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewNotificationService creates a notification service. publisher may be
// events.Discard{} when no realtime channel is configured.
func NewNotificationService(store storage.Store, publisher events.Publisher) *NotificationService {
	return &NotificationService{store: store, publisher: publisher}
}

// Notify persists a notification for the user and pushes it out. A failed
// persist is returned to the caller; a failed push is only logged.
func (s *NotificationService) Notify(ctx context.Context, userID int64, typ, title, message string, data map[string]any) error {
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			slog.Warn("notification data not serializable", "type", typ, "error", err)
		} else {
			n.Data = string(raw)
		}
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsSent.WithLabelValues(typ).Inc()

	if err := s.publisher.Publish(events.Event{
		UserID:    userID,
		Type:      typ,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}); err != nil {
		slog.Warn("notification push failed", "user_id", userID, "type", typ, "error", err)
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit)
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.store.MarkNotificationRead(ctx, userID, notificationID)
}

package notify

import (
	"context"

	"go.uber.org/zap"
	"notify_hub/internal/repository"
)

// Counter reads the unread count straight from the store on every call; the
// value drives a user-visible badge and must never be stale.
type Counter struct {
	store repository.NotificationRepository
	log   *zap.Logger
}

func NewCounter(store repository.NotificationRepository, logger *zap.Logger) *Counter {
	return &Counter{store: store, log: logger}
}

func (c *Counter) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := c.store.CountUnread(ctx, userID)
	if err != nil {
		c.log.Error("store count unread failed", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

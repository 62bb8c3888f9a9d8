package repository

import (
	"context"
	"time"

	"notify_hub/internal/model"
)

// NotificationRepository is the durable notification store. Insert must treat
// the dedup key as unique and report a conflict as domain.ErrDuplicateNotification.
type NotificationRepository interface {
	FindMatching(ctx context.Context, key model.DedupKey) (model.Notification, bool, error)
	Insert(ctx context.Context, notification model.Notification) (model.Notification, error)
	Touch(ctx context.Context, id string, now time.Time) (model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	ListUnread(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error)
	SetRead(ctx context.Context, id, userID string, isRead bool, now time.Time) (model.Notification, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

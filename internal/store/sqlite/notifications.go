package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"notify_hub/internal/domain"
	"notify_hub/internal/model"
)

type row struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	SenderID   string `db:"sender_id"`
	ObjectType string `db:"object_type"`
	ObjectID   string `db:"object_id"`
	Message    string `db:"message"`
	DedupKey   string `db:"dedup_key"`
	IsRead     bool   `db:"is_read"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

func (r row) toModel() model.Notification {
	return model.Notification{
		ID:         r.ID,
		UserID:     r.UserID,
		SenderID:   r.SenderID,
		ObjectType: r.ObjectType,
		ObjectID:   r.ObjectID,
		Message:    r.Message,
		IsRead:     r.IsRead,
		CreatedAt:  time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt:  time.Unix(0, r.UpdatedAt).UTC(),
	}
}

const selectColumns = `SELECT id, user_id, sender_id, object_type, object_id, message, dedup_key, is_read, created_at, updated_at FROM notifications`

func (s *Store) FindMatching(ctx context.Context, key model.DedupKey) (model.Notification, bool, error) {
	var r row
	err := s.db.GetContext(ctx, &r, selectColumns+" WHERE dedup_key = ?", key.Hash())
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, false, nil
	}
	if err != nil {
		s.log.Error("sqlite find matching notification failed", zap.String("user_id", key.UserID), zap.Error(err))
		return model.Notification{}, false, fmt.Errorf("finding notification: %w", err)
	}
	return r.toModel(), true, nil
}

func (s *Store) Insert(ctx context.Context, notification model.Notification) (model.Notification, error) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	if notification.UpdatedAt.IsZero() {
		notification.UpdatedAt = notification.CreatedAt
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, sender_id, object_type, object_id, message, dedup_key, is_read, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		notification.ID, notification.UserID, notification.SenderID,
		notification.ObjectType, notification.ObjectID, notification.Message,
		notification.Key().Hash(), boolToInt(notification.IsRead),
		notification.CreatedAt.UnixNano(), notification.UpdatedAt.UnixNano(),
	)
	if err != nil {
		s.log.Error("sqlite create notification failed", zap.String("user_id", notification.UserID), zap.Error(err))
		return model.Notification{}, fmt.Errorf("creating notification: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.Notification{}, domain.ErrDuplicateNotification
	}
	return notification, nil
}

func (s *Store) Touch(ctx context.Context, id string, now time.Time) (model.Notification, error) {
	result, err := s.db.ExecContext(ctx, "UPDATE notifications SET updated_at = ? WHERE id = ?", now.UnixNano(), id)
	if err != nil {
		s.log.Error("sqlite touch notification failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, fmt.Errorf("touching notification %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	return s.get(ctx, id)
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		s.log.Error("sqlite count unread failed", zap.String("user_id", userID), zap.Error(err))
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) ListUnread(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		selectColumns+" WHERE user_id = ? AND is_read = 0 ORDER BY updated_at DESC, id ASC LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		s.log.Error("sqlite list unread failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("listing unread notifications: %w", err)
	}

	var result []model.Notification
	for _, r := range rows {
		result = append(result, r.toModel())
	}
	return result, nil
}

func (s *Store) SetRead(ctx context.Context, id, userID string, isRead bool, now time.Time) (model.Notification, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		boolToInt(isRead), now.UnixNano(), id, userID,
	)
	if err != nil {
		s.log.Error("sqlite set read failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, fmt.Errorf("updating notification %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	return s.get(ctx, id)
}

func (s *Store) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE is_read = 1 AND created_at < ?", cutoff.UnixNano())
	if err != nil {
		s.log.Error("sqlite delete read notifications failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("deleting read notifications: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) get(ctx context.Context, id string) (model.Notification, error) {
	var r row
	err := s.db.GetContext(ctx, &r, selectColumns+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	if err != nil {
		return model.Notification{}, fmt.Errorf("getting notification %s: %w", id, err)
	}
	return r.toModel(), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

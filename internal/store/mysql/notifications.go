package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"notify_hub/internal/db"
	"notify_hub/internal/domain"
	"notify_hub/internal/model"
)

func (s *Store) FindMatching(ctx context.Context, key model.DedupKey) (model.Notification, bool, error) {
	row, err := s.queries.GetNotificationByDedupKey(ctx, key.Hash())
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, false, nil
	}
	if err != nil {
		s.log.Error("sql find matching notification failed",
			zap.String("user_id", key.UserID),
			zap.String("object_type", key.ObjectType),
			zap.String("object_id", key.ObjectID),
			zap.Error(err),
		)
		return model.Notification{}, false, err
	}
	return toModel(row), true, nil
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
	_, err := s.queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID:         notification.ID,
		UserID:     notification.UserID,
		SenderID:   notification.SenderID,
		ObjectType: notification.ObjectType,
		ObjectID:   notification.ObjectID,
		Message:    notification.Message,
		DedupKey:   notification.Key().Hash(),
		IsRead:     notification.IsRead,
		CreatedAt:  notification.CreatedAt,
		UpdatedAt:  notification.UpdatedAt,
	})
	if isDuplicateEntry(err) {
		return model.Notification{}, domain.ErrDuplicateNotification
	}
	if err != nil {
		s.log.Error("sql create notification failed",
			zap.String("user_id", notification.UserID),
			zap.String("object_type", notification.ObjectType),
			zap.String("object_id", notification.ObjectID),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	return notification, nil
}

func (s *Store) Touch(ctx context.Context, id string, now time.Time) (model.Notification, error) {
	if err := s.queries.TouchNotification(ctx, db.TouchNotificationParams{UpdatedAt: now, ID: id}); err != nil {
		s.log.Error("sql touch notification failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	return s.get(ctx, id)
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.queries.CountUnreadNotifications(ctx, userID)
	if err != nil {
		s.log.Error("sql count unread failed", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return int(count), nil
}

func (s *Store) ListUnread(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	rows, err := s.queries.ListUnreadNotifications(ctx, db.ListUnreadNotificationsParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		s.log.Error("sql list unread failed", zap.String("user_id", userID), zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}

	var result []model.Notification
	for _, row := range rows {
		result = append(result, toModel(row))
	}
	return result, nil
}

func (s *Store) SetRead(ctx context.Context, id, userID string, isRead bool, now time.Time) (model.Notification, error) {
	if _, err := s.queries.SetNotificationRead(ctx, db.SetNotificationReadParams{
		IsRead:    isRead,
		UpdatedAt: now,
		ID:        id,
		UserID:    userID,
	}); err != nil {
		s.log.Error("sql set read failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	notification, err := s.get(ctx, id)
	if err != nil {
		return model.Notification{}, err
	}
	if notification.UserID != userID {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	return notification, nil
}

func (s *Store) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.queries.DeleteReadNotificationsBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("sql delete read notifications failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) get(ctx context.Context, id string) (model.Notification, error) {
	row, err := s.queries.GetNotification(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	if err != nil {
		s.log.Error("sql get notification failed", zap.String("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	return toModel(row), nil
}

func toModel(row db.Notification) model.Notification {
	return model.Notification{
		ID:         row.ID,
		UserID:     row.UserID,
		SenderID:   row.SenderID,
		ObjectType: row.ObjectType,
		ObjectID:   row.ObjectID,
		Message:    row.Message,
		IsRead:     row.IsRead,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

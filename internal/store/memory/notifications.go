package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"notify_hub/internal/domain"
	"notify_hub/internal/model"
)

func (s *Store) FindMatching(_ context.Context, key model.DedupKey) (model.Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[key.Hash()]
	if !ok {
		return model.Notification{}, false, nil
	}
	return s.records[id], true, nil
}

func (s *Store) Insert(_ context.Context, notification model.Notification) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := notification.Key().Hash()
	if _, exists := s.byKey[hash]; exists {
		return model.Notification{}, domain.ErrDuplicateNotification
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if _, taken := s.records[notification.ID]; taken {
		return model.Notification{}, domain.ErrDuplicateNotification
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	if notification.UpdatedAt.IsZero() {
		notification.UpdatedAt = notification.CreatedAt
	}
	s.records[notification.ID] = notification
	s.byKey[hash] = notification.ID
	return notification, nil
}

func (s *Store) Touch(_ context.Context, id string, now time.Time) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	record.UpdatedAt = now
	s.records[id] = record
	return record, nil
}

func (s *Store) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, record := range s.records {
		if record.UserID == userID && !record.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListUnread(_ context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	s.mu.Lock()
	var result []model.Notification
	for _, record := range s.records {
		if record.UserID == userID && !record.IsRead {
			result = append(result, record)
		}
	}
	s.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) SetRead(_ context.Context, id, userID string, isRead bool, now time.Time) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok || record.UserID != userID {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	record.IsRead = isRead
	record.UpdatedAt = now
	s.records[id] = record
	return record, nil
}

func (s *Store) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, record := range s.records {
		if record.IsRead && record.CreatedAt.Before(cutoff) {
			delete(s.records, id)
			delete(s.byKey, record.Key().Hash())
			deleted++
		}
	}
	if deleted > 0 {
		s.log.Debug("memory retention sweep", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

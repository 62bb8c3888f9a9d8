package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"notify_hub/internal/domain"
	"notify_hub/internal/metrics"
	"notify_hub/internal/model"
	"notify_hub/internal/repository"
)

type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeCreated Outcome = "created"
	OutcomeBumped  Outcome = "bumped"
)

// Pusher delivers a frame to the live connections of a user. Delivery is best
// effort and never fails the caller.
type Pusher interface {
	PushToUser(userID string, msg domain.Message) int
}

// Notice is a domain event addressed to one recipient.
type Notice struct {
	UserID     string
	SenderID   string
	ObjectType string
	ObjectID   string
	Message    string
	Kind       string
}

func (n Notice) key() model.DedupKey {
	return model.DedupKey{
		UserID:     n.UserID,
		SenderID:   n.SenderID,
		ObjectType: n.ObjectType,
		ObjectID:   n.ObjectID,
		Message:    n.Message,
	}
}

func (n Notice) validate() error {
	if n.UserID == "" || n.SenderID == "" || n.ObjectID == "" {
		return fmt.Errorf("%w: user_id, sender_id and object_id are required", domain.ErrMissingField)
	}
	if !domain.IsValidObjectType(n.ObjectType) {
		return domain.ErrInvalidObjectType
	}
	if !domain.IsValidEventKind(n.Kind) || !domain.KindMatchesObject(n.Kind, n.ObjectType) {
		return domain.ErrInvalidEventKind
	}
	return nil
}

type Service struct {
	store   repository.NotificationRepository
	counter *Counter
	pusher  Pusher
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store repository.NotificationRepository, counter *Counter, pusher Pusher, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		counter: counter,
		pusher:  pusher,
		metrics: m,
		log:     logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Notify records a notice, collapsing exact repeats into one row, then pushes
// the recipient's fresh unread count. Only a failed write is returned, so the
// triggering operation can abort; once the row is stored, a failed recount or
// push is logged and Notify succeeds.
func (s *Service) Notify(ctx context.Context, notice Notice) (model.Notification, Outcome, error) {
	if err := notice.validate(); err != nil {
		return model.Notification{}, "", err
	}
	if notice.SenderID == notice.UserID {
		s.metrics.Notifications.WithLabelValues(string(OutcomeSkipped)).Inc()
		return model.Notification{}, OutcomeSkipped, nil
	}

	ctx, span := otel.Tracer("notify").Start(ctx, "notify.upsert")
	span.SetAttributes(
		attribute.String("notification.object_type", notice.ObjectType),
		attribute.String("notification.kind", notice.Kind),
	)
	defer span.End()

	stored, outcome, err := s.upsert(ctx, notice)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		s.log.Error("store upsert notification failed",
			zap.String("user_id", notice.UserID),
			zap.String("object_type", notice.ObjectType),
			zap.String("object_id", notice.ObjectID),
			zap.Error(err),
		)
		return model.Notification{}, "", err
	}
	s.metrics.Notifications.WithLabelValues(string(outcome)).Inc()

	// the row is durable at this point; a failed recount only costs the push
	count, err := s.counter.CountUnread(ctx, notice.UserID)
	if err != nil {
		span.RecordError(err)
		s.log.Warn("push skipped, unread count unavailable",
			zap.String("user_id", notice.UserID),
			zap.String("notification_id", stored.ID),
			zap.Error(err),
		)
		return stored, outcome, nil
	}
	msg, err := domain.MessageForKind(notice.Kind, notice.ObjectType, count)
	if err != nil {
		return stored, outcome, nil
	}
	delivered := s.pusher.PushToUser(notice.UserID, msg)
	span.SetAttributes(attribute.Int("notification.delivered", delivered))
	return stored, outcome, nil
}

func (s *Service) upsert(ctx context.Context, notice Notice) (model.Notification, Outcome, error) {
	existing, found, err := s.store.FindMatching(ctx, notice.key())
	if err != nil {
		return model.Notification{}, "", fmt.Errorf("find matching notification: %w", err)
	}
	if found {
		return s.bump(ctx, existing)
	}

	now := s.now()
	created, err := s.store.Insert(ctx, model.Notification{
		UserID:     notice.UserID,
		SenderID:   notice.SenderID,
		ObjectType: notice.ObjectType,
		ObjectID:   notice.ObjectID,
		Message:    notice.Message,
		IsRead:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if errors.Is(err, domain.ErrDuplicateNotification) {
		// a concurrent identical notice won the insert
		existing, found, err = s.store.FindMatching(ctx, notice.key())
		if err != nil {
			return model.Notification{}, "", fmt.Errorf("find matching notification: %w", err)
		}
		if !found {
			return model.Notification{}, "", domain.ErrDuplicateNotification
		}
		return s.bump(ctx, existing)
	}
	if err != nil {
		return model.Notification{}, "", fmt.Errorf("insert notification: %w", err)
	}
	return created, OutcomeCreated, nil
}

// bump refreshes recency. updated_at always moves forward, by at least the
// store's microsecond resolution, even when the clock has not advanced.
func (s *Service) bump(ctx context.Context, existing model.Notification) (model.Notification, Outcome, error) {
	now := s.now()
	if floor := existing.UpdatedAt.Add(time.Microsecond); now.Before(floor) {
		now = floor
	}
	touched, err := s.store.Touch(ctx, existing.ID, now)
	if err != nil {
		return model.Notification{}, "", fmt.Errorf("touch notification: %w", err)
	}
	return touched, OutcomeBumped, nil
}

func (s *Service) ListUnread(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	list, err := s.store.ListUnread(ctx, userID, limit, offset)
	if err != nil {
		s.log.Error("store list unread failed", zap.String("user_id", userID), zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}
	return list, nil
}

// Respond records the recipient's acknowledgment and pushes the new count.
func (s *Service) Respond(ctx context.Context, userID, id string, isRead bool) (model.Notification, error) {
	updated, err := s.store.SetRead(ctx, id, userID, isRead, s.now())
	if err != nil {
		if !errors.Is(err, domain.ErrNotificationNotFound) {
			s.log.Error("store set read failed", zap.String("user_id", userID), zap.String("id", id), zap.Error(err))
		}
		return model.Notification{}, err
	}
	count, err := s.counter.CountUnread(ctx, userID)
	if err != nil {
		return updated, nil
	}
	s.pusher.PushToUser(userID, domain.CountMessage{Count: count})
	return updated, nil
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.counter.CountUnread(ctx, userID)
}

package retention

import (
	"context"
	"time"

	"go.uber.org/zap"
	"notify_hub/internal/config"
	"notify_hub/internal/metrics"
	"notify_hub/internal/repository"
)

// Sweeper periodically deletes read notifications older than the retention
// age. Unread rows are never touched.
type Sweeper struct {
	store    repository.NotificationRepository
	metrics  *metrics.Metrics
	log      *zap.Logger
	age      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(cfg *config.Config, store repository.NotificationRepository, m *metrics.Metrics, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		metrics:  m,
		log:      logger,
		age:      cfg.RetentionAge,
		interval: cfg.RetentionInterval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if s.age <= 0 || s.interval <= 0 {
		s.log.Info("retention sweep disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("retention sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.age)
	deleted, err := s.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.RetentionDeleted.Add(float64(deleted))
	if deleted > 0 {
		s.log.Info("retention sweep completed", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// Package scheduler runs periodic store maintenance.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/config"
	"go.uber.org/zap"
)

// OrphanSweeper removes attachments whose purchase is gone.
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context, grace time.Duration) (int, error)
}

// NotificationPurger drops old read notifications.
type NotificationPurger interface {
	PurgeRead(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Scheduler wraps a gocron scheduler with the maintenance jobs.
type Scheduler struct {
	cron   *gocron.Scheduler
	logger *zap.Logger
}

// New registers the jobs. Intervals of zero disable the matching job.
func New(cfg config.SchedulerConfig, loc *time.Location, sweeper OrphanSweeper, purger NotificationPurger, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: gocron.NewScheduler(loc), logger: logger}
	s.cron.SingletonModeAll()

	if cfg.OrphanSweepInterval > 0 {
		_, err := s.cron.Every(cfg.OrphanSweepInterval).Tag("orphan-sweep").Do(func() {
			n, err := sweeper.SweepOrphans(context.Background(), cfg.OrphanGrace)
			if err != nil {
				logger.Warn("orphan attachment sweep failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("orphan attachments removed", zap.Int("count", n))
			}
		})
		if err != nil {
			return nil, err
		}
	}

	if cfg.RetentionInterval > 0 && cfg.NotificationMaxAge > 0 {
		_, err := s.cron.Every(cfg.RetentionInterval).Tag("notification-retention").Do(func() {
			n, err := purger.PurgeRead(context.Background(), cfg.NotificationMaxAge)
			if err != nil {
				logger.Warn("notification retention failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("old notifications removed", zap.Int64("count", n))
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.StartAsync()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Jobs())
}

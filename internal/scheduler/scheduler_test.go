package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/config"
	"go.uber.org/zap"
)

type countingSweeper struct{ calls int32 }

func (s *countingSweeper) SweepOrphans(context.Context, time.Duration) (int, error) {
	atomic.AddInt32(&s.calls, 1)
	return 0, nil
}

type countingPurger struct{ calls int32 }

func (p *countingPurger) PurgeRead(context.Context, time.Duration) (int64, error) {
	atomic.AddInt32(&p.calls, 1)
	return 0, nil
}

func TestNewRegistersConfiguredJobs(t *testing.T) {
	cfg := config.SchedulerConfig{
		OrphanSweepInterval: time.Hour,
		OrphanGrace:         time.Hour,
		RetentionInterval:   time.Hour,
		NotificationMaxAge:  time.Hour,
	}
	s, err := New(cfg, time.UTC, &countingSweeper{}, &countingPurger{}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Jobs() != 2 {
		t.Fatalf("expected 2 jobs, got %d", s.Jobs())
	}

	cfg.RetentionInterval = 0
	s, err = New(cfg, time.UTC, &countingSweeper{}, &countingPurger{}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Jobs() != 1 {
		t.Fatalf("expected retention disabled, got %d jobs", s.Jobs())
	}
}

func TestJobsRunOnStart(t *testing.T) {
	sweeper, purger := &countingSweeper{}, &countingPurger{}
	s, err := New(config.SchedulerConfig{
		OrphanSweepInterval: time.Hour,
		RetentionInterval:   time.Hour,
		NotificationMaxAge:  time.Hour,
	}, time.UTC, sweeper, purger, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&sweeper.calls) == 0 || atomic.LoadInt32(&purger.calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("jobs did not run on start: sweep=%d purge=%d", sweeper.calls, purger.calls)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

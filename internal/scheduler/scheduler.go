// Package scheduler refreshes the watchlist on a cron schedule.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-structure/internal/config"
	"github.com/rxtech-lab/argo-structure/internal/logger"
	"github.com/rxtech-lab/argo-structure/internal/service"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// Refresher runs one watchlist refresh.
type Refresher interface {
	Refresh(ctx context.Context, watchlist []config.Index) (service.RefreshReport, error)
}

// Scheduler runs the refresh task. Overlapping runs are skipped.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	watchlist []config.Index
	timeout   time.Duration
	log       *logger.Logger

	ctx context.Context
	mu  sync.Mutex
	// running guards against a slow refresh overlapping the next tick.
	running bool
}

// New creates a scheduler. ctx bounds every refresh it starts.
func New(ctx context.Context, refresher Refresher, watchlist []config.Index, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		refresher: refresher,
		watchlist: watchlist,
		timeout:   10 * time.Minute,
		log:       log.Named("scheduler"),
		ctx:       ctx,
	}
}

// Register adds the refresh task. The expression has a leading seconds field.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, func() { s.RunNow() }); err != nil {
		return errors.Wrapf(errors.ErrCodeScheduleInvalid, err, "register refresh task %q", expr)
	}

	return nil
}

// Next returns the next scheduled run, or the zero time when nothing is registered.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	return entries[0].Next
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Time("next", s.Next()))
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow runs a refresh immediately. It returns false when a refresh is
// already in progress.
func (s *Scheduler) RunNow() bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("refresh still running, skipping")

		return false
	}

	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	report, err := s.refresher.Refresh(ctx, s.watchlist)
	if err != nil {
		s.log.Error("refresh failed", zap.Error(err))

		return true
	}

	for _, snap := range report.Signals {
		kind := "BG"
		if snap.TG {
			kind = "TG"
		}

		s.log.Info("structure signal",
			zap.String("ticker", snap.Ticker),
			zap.String("kind", kind),
			zap.String("date", snap.Date.Format(time.DateOnly)),
			zap.Float64("close", snap.Close),
		)
	}

	return true
}

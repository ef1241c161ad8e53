// Package scheduler runs saved-search pollers on an interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/jobhunter/internal/poller"
)

// Scheduler owns the main loop: it ticks on an interval and runs each
// poller sequentially.
type Scheduler struct {
	pollers  []*poller.SearchPoller
	interval time.Duration
	pause    time.Duration // gap between two saved searches in one cycle
	cleanup  func() error  // optional, run once per cycle
	logger   *slog.Logger
}

// New creates a scheduler that runs every poller once per interval.
func New(pollers []*poller.SearchPoller, interval, pause time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{pollers: pollers, interval: interval, pause: pause, logger: logger}
}

// WithCleanup sets a function run at the end of every cycle, typically
// pruning old seen-job entries.
func (s *Scheduler) WithCleanup(fn func() error) *Scheduler {
	s.cleanup = fn
	return s
}

// Run runs one cycle immediately, then one per interval. It returns nil when
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"searches", len(s.pollers),
	)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce polls every saved search once. A failing search is logged and
// does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for i, p := range s.pollers {
		if ctx.Err() != nil {
			return
		}
		if err := p.Poll(ctx); err != nil {
			s.logger.Error("poll failed", "search", p.Name, "error", err)
		}

		if i < len(s.pollers)-1 && s.pause > 0 {
			t := time.NewTimer(s.pause)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}

	if s.cleanup != nil && ctx.Err() == nil {
		if err := s.cleanup(); err != nil {
			s.logger.Warn("cleanup failed", "error", err)
		}
	}
}

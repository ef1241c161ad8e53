package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/criteria"
	"github.com/amishk599/jobhunter/internal/filter"
	"github.com/amishk599/jobhunter/internal/poller"
	"github.com/amishk599/jobhunter/internal/ratelimit"
	"github.com/amishk599/jobhunter/internal/scheduler"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll saved searches and notify on new jobs",
	Long:  "Runs every search in watch.searches on watch.interval and sends new matches to the configured notifier; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run one cycle and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	if len(cfg.Watch.Searches) == 0 {
		return fmt.Errorf("no saved searches: add watch.searches to the config")
	}
	a.logger.Info("config loaded",
		"interval", cfg.Watch.Interval.String(),
		"searches", len(cfg.Watch.Searches),
		"backend", cfg.Search.Backend,
		"max_age", cfg.Watch.MaxAge.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := a.repository(ctx)
	if err != nil {
		a.logger.Error("failed to open store", "error", err)
		return err
	}
	defer closeRepo()

	searcher := a.searcher(ratelimit.NewBackendLimiter(cfg.Watch.MinDelay))
	jobFilter := filter.New(cfg.Filters)
	n := a.notifier()

	var pollers []*poller.SearchPoller
	for _, text := range cfg.Watch.Searches {
		c, err := criteria.Parse(text)
		if err != nil {
			return fmt.Errorf("watch.searches %q: %w", text, err)
		}
		c.MaxJobs = cfg.Search.MaxJobs
		pollers = append(pollers, poller.New(poller.Config{
			Name:     text,
			Criteria: c,
			Searcher: searcher,
			Filter:   jobFilter,
			Store:    repo,
			Repo:     repo,
			Notifier: n,
			MaxAge:   cfg.Watch.MaxAge,
		}, a.logger))
		a.logger.Info("registered saved search", "search", text, "experience", c.Experience)
	}

	sched := scheduler.New(pollers, cfg.Watch.Interval, cfg.Watch.MinDelay, a.logger).
		WithCleanup(func() error { return repo.Cleanup(cfg.Watch.Retention) })

	if watchOnce {
		sched.RunOnce(ctx)
		a.logger.Info("watch cycle complete")
		return nil
	}
	if err := sched.Run(ctx); err != nil {
		a.logger.Error("scheduler error", "error", err)
		return err
	}
	a.logger.Info("goodbye")
	return nil
}

// Package poller runs one saved search end to end: search, filter, dedup,
// persist, notify, mark seen.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobhunter/internal/model"
)

// SearchPoller owns the pipeline for a single saved search.
type SearchPoller struct {
	Name     string // the saved search as written in config
	criteria model.SearchCriteria
	searcher model.JobSearcher
	filter   model.JobFilter
	store    model.JobStore
	repo     model.Repository // optional; new jobs are saved when set
	notifier model.Notifier
	maxAge   time.Duration // zero disables the freshness check
	logger   *slog.Logger
	now      func() time.Time
}

// Config groups the collaborators of a SearchPoller.
type Config struct {
	Name     string
	Criteria model.SearchCriteria
	Searcher model.JobSearcher
	Filter   model.JobFilter
	Store    model.JobStore
	Repo     model.Repository
	Notifier model.Notifier
	MaxAge   time.Duration
}

// New creates a poller wired with all its dependencies.
func New(cfg Config, logger *slog.Logger) *SearchPoller {
	return &SearchPoller{
		Name:     cfg.Name,
		criteria: cfg.Criteria,
		searcher: cfg.Searcher,
		filter:   cfg.Filter,
		store:    cfg.Store,
		repo:     cfg.Repo,
		notifier: cfg.Notifier,
		maxAge:   cfg.MaxAge,
		logger:   logger,
		now:      time.Now,
	}
}

// Poll runs one cycle. On the very first run (empty seen store) matches are
// marked seen without notifying so the user is not flooded with old jobs.
func (p *SearchPoller) Poll(ctx context.Context) error {
	jobs, err := p.searcher.Search(ctx, p.criteria)
	if err != nil {
		return fmt.Errorf("polling %q: %w", p.Name, err)
	}

	var matched []model.Job
	for _, job := range jobs {
		if p.filter.Match(job) && p.fresh(job) {
			matched = append(matched, job)
		}
	}

	firstRun, err := p.store.IsEmpty()
	if err != nil {
		return fmt.Errorf("polling %q: checking store: %w", p.Name, err)
	}
	if firstRun {
		if err := p.markSeen(matched); err != nil {
			return err
		}
		p.logger.Info("seeded saved search", "search", p.Name, "jobs", len(matched))
		return nil
	}

	var newJobs []model.Job
	for _, job := range matched {
		if job.Key() == "" {
			newJobs = append(newJobs, job)
			continue
		}
		seen, err := p.store.HasSeen(job.Key())
		if err != nil {
			return fmt.Errorf("polling %q: checking seen status: %w", p.Name, err)
		}
		if !seen {
			newJobs = append(newJobs, job)
		}
	}

	if len(newJobs) > 0 {
		if p.repo != nil {
			saved, err := p.repo.SaveJobs(ctx, newJobs)
			if err != nil {
				return fmt.Errorf("polling %q: saving jobs: %w", p.Name, err)
			}
			newJobs = saved
		}
		if err := p.notifier.Notify(newJobs); err != nil {
			return fmt.Errorf("polling %q: notifying: %w", p.Name, err)
		}
	}
	if err := p.markSeen(newJobs); err != nil {
		return err
	}

	p.logger.Info("polled saved search",
		"search", p.Name,
		"fetched", len(jobs),
		"matched", len(matched),
		"new", len(newJobs),
	)
	return nil
}

// fresh reports whether job is recent enough. Undated jobs pass.
func (p *SearchPoller) fresh(job model.Job) bool {
	if p.maxAge <= 0 || job.PostedAt == nil {
		return true
	}
	return p.now().Sub(*job.PostedAt) <= p.maxAge
}

// markSeen records every job that has a key. Keyless jobs cannot be told
// apart, so they are never recorded.
func (p *SearchPoller) markSeen(jobs []model.Job) error {
	for _, job := range jobs {
		if job.Key() == "" {
			continue
		}
		if err := p.store.MarkSeen(job.Key()); err != nil {
			return fmt.Errorf("polling %q: marking seen: %w", p.Name, err)
		}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/ai"
	"github.com/amishk599/jobhunter/internal/chat"
	"github.com/amishk599/jobhunter/internal/config"
	"github.com/amishk599/jobhunter/internal/crew"
	"github.com/amishk599/jobhunter/internal/filter"
	"github.com/amishk599/jobhunter/internal/linkedin"
	"github.com/amishk599/jobhunter/internal/logging"
	"github.com/amishk599/jobhunter/internal/model"
	"github.com/amishk599/jobhunter/internal/notifier"
	"github.com/amishk599/jobhunter/internal/ratelimit"
	"github.com/amishk599/jobhunter/internal/resume"
	"github.com/amishk599/jobhunter/internal/retry"
	"github.com/amishk599/jobhunter/internal/store"
)

// referralsPerCompany caps the contacts collected for each company.
const referralsPerCompany = 5

var (
	cfgPath string
	debug   bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "jobhunter",
	Short: "LinkedIn job search assistant",
	Long:  "jobhunter searches LinkedIn from a chat, stores matches, tailors your resume for each job and looks for referral contacts.",
	SilenceUsage: true,
	// With no subcommand, start the interactive chat.
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBHUNTER_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "do not write to the database")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path > JOBHUNTER_CONFIG env var > ./config.yaml.
// Without an explicit path a missing file falls back to defaults.
func loadConfig(path string) (*config.Config, error) {
	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		if env := os.Getenv("JOBHUNTER_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = "config.yaml"
		}
	}
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// app holds what every subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
}

// setup loads config and builds the logger. quiet sends stdout logging to
// the void for commands that own the terminal.
func setup(quiet bool) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logCfg := cfg.Log
	if quiet {
		switch logCfg.Output {
		case "stdout":
			return &app{cfg: cfg, logger: logging.Discard(), closeLog: func() error { return nil }}, nil
		case "both":
			logCfg.Output = "file"
		}
	}
	logger, closeLog, err := logging.New(logCfg, debug)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}
	return &app{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

func (a *app) close() {
	_ = a.closeLog()
}

func (a *app) browserOptions() linkedin.BrowserOptions {
	b := a.cfg.Browser
	return linkedin.BrowserOptions{
		Headless:      b.Headless,
		UserAgent:     b.UserAgent,
		ExecPath:      b.ExecPath,
		PageLoadDelay: b.PageLoadDelay,
		ScrollCount:   b.ScrollCount,
		ScrollDelay:   b.ScrollDelay,
		Timeout:       b.Timeout,
		CookiesFile:   b.CookiesFile,
	}
}

// searcher builds the configured scraper wrapped with retry and, when
// minDelay is positive, per-backend rate limiting.
func (a *app) searcher(limiter *ratelimit.BackendLimiter) model.JobSearcher {
	cfg := a.cfg
	var s model.JobSearcher
	switch cfg.Search.Backend {
	case "guest":
		s = linkedin.NewGuestScraper(cfg.Search.BaseURL, cfg.Browser.UserAgent, cfg.Browser.PageLoadDelay, cfg.Browser.Timeout, cfg.Search.MaxJobs, a.logger)
	default:
		s = linkedin.NewBrowserScraper(cfg.Search.BaseURL, a.browserOptions(), cfg.Search.MaxJobs, a.logger)
	}
	s = retry.NewSearcher(s, cfg.Search.MaxRetries, cfg.Search.RetryDelay, a.logger)
	if limiter != nil {
		s = ratelimit.NewSearcher(s, limiter, cfg.Search.Backend)
	}
	return s
}

// jobRepo is the database as seen by the crew and the watch pipeline.
type jobRepo interface {
	model.Repository
	model.JobStore
}

// repository opens the configured database, or a NopStore in dry-run mode.
func (a *app) repository(ctx context.Context) (jobRepo, func() error, error) {
	if dryRun {
		a.logger.Info("dry-run mode, nothing will be written to the database")
		return store.NewNopStore(), func() error { return nil }, nil
	}
	st, err := store.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", a.cfg.Database.Driver, err)
	}
	return st, st.Close, nil
}

func (a *app) tailor() resume.Tailorer {
	if !a.cfg.AI.Enabled {
		a.logger.Debug("ai disabled, resumes are copied without tailoring")
		return ai.NewNopTailor()
	}
	httpClient := &http.Client{Timeout: a.cfg.AI.Timeout}
	provider := ai.NewOpenAIProvider(a.cfg.AI.BaseURL, a.cfg.AI.APIKey, a.cfg.AI.Model, httpClient)
	return ai.NewResumeTailor(provider, ai.ResumeTailorTemplate, a.logger)
}

func (a *app) crew(searcher model.JobSearcher, repo model.Repository) *crew.Crew {
	return crew.NewJobHunterCrew(crew.Deps{
		Searcher:            searcher,
		Filter:              filter.New(a.cfg.Filters),
		Repo:                repo,
		Optimizer:           resume.NewOptimizer(a.tailor(), a.cfg.Resume.OutputDir, a.cfg.Resume.MaxConcurrency, a.logger),
		Finder:              linkedin.NewPeopleSearcher(a.cfg.Search.BaseURL, a.browserOptions(), a.logger),
		ReferralsPerCompany: referralsPerCompany,
	}, a.logger)
}

func (a *app) session(runner chat.Runner) *chat.Session {
	return chat.NewSession(runner, chat.Options{
		JobsPerPage: a.cfg.Chat.JobsPerPage,
		MaxJobs:     a.cfg.Search.MaxJobs,
		ResumePath:  a.cfg.Resume.Path,
		Debug:       debug,
	}, a.logger)
}

func (a *app) notifier() model.Notifier {
	switch a.cfg.Notification.Type {
	case "slack":
		a.logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(a.cfg.Notification.WebhookURL, &http.Client{Timeout: 30 * time.Second}, a.logger)
	default:
		return notifier.NewLogNotifier(a.logger)
	}
}

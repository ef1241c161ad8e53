package linkedin

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/amishk599/jobhunter/internal/model"
)

// maxGuestPages bounds paging when the endpoint keeps returning cards.
const maxGuestPages = 40

// GuestScraper searches LinkedIn through the public guest jobs endpoint. It
// needs no browser and no session, but only sees public listings.
type GuestScraper struct {
	baseURL    string
	userAgent  string
	pageDelay  time.Duration
	timeout    time.Duration
	defaultMax int
	logger     *slog.Logger
}

// NewGuestScraper creates a GuestScraper. pageDelay is the pause between
// page requests.
func NewGuestScraper(baseURL, userAgent string, pageDelay, timeout time.Duration, defaultMax int, logger *slog.Logger) *GuestScraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GuestScraper{
		baseURL:    baseURL,
		userAgent:  userAgent,
		pageDelay:  pageDelay,
		timeout:    timeout,
		defaultMax: defaultMax,
		logger:     logger,
	}
}

// Search pages through the guest endpoint until max jobs are collected or a
// page comes back empty.
func (g *GuestScraper) Search(ctx context.Context, c model.SearchCriteria) ([]model.Job, error) {
	max := c.MaxJobs
	if max <= 0 {
		max = g.defaultMax
	}

	var (
		page    []model.Job
		pageErr *model.HTTPError
	)
	collector := g.newCollector()
	collector.OnHTML("body", func(e *colly.HTMLElement) {
		page = append(page, ExtractCards(e.DOM, 0)...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r == nil || r.StatusCode == 0 {
			return
		}
		pageErr = &model.HTTPError{StatusCode: r.StatusCode, Err: err}
		if r.Headers != nil {
			pageErr.RetryAfter = parseRetryAfter(r.Headers.Get("Retry-After"))
		}
	})

	var jobs []model.Job
	seen := make(map[string]bool)
	start := 0
	for i := 0; i < maxGuestPages && (max <= 0 || len(jobs) < max); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, pageErr = nil, nil
		pageURL := BuildGuestURL(g.baseURL, c, start)
		g.logger.Debug("fetching guest page", "url", pageURL)

		err := collector.Visit(pageURL)
		if pageErr != nil {
			return nil, fmt.Errorf("linkedin guest search %q: %w", c.Keywords, pageErr)
		}
		if err != nil {
			return nil, fmt.Errorf("linkedin guest search %q: %w", c.Keywords, err)
		}
		if len(page) == 0 {
			break
		}
		start += len(page)

		for _, job := range page {
			if key := job.Key(); key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			jobs = append(jobs, job)
		}
	}

	if max > 0 && len(jobs) > max {
		jobs = jobs[:max]
	}
	g.logger.Info("linkedin guest search complete", "keywords", c.Keywords, "location", c.Location, "jobs", len(jobs))
	return jobs, nil
}

func (g *GuestScraper) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(g.userAgent))
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})
	// Limit only errors on an invalid glob.
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       g.pageDelay,
	})
	c.SetRequestTimeout(g.timeout)
	return c
}

// parseRetryAfter parses a Retry-After header given in seconds. Returns zero
// if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

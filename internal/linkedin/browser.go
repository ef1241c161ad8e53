package linkedin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/amishk599/jobhunter/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// BrowserOptions configures the Chrome instance and page pacing.
type BrowserOptions struct {
	Headless      bool
	UserAgent     string
	ExecPath      string
	PageLoadDelay time.Duration
	ScrollCount   int
	ScrollDelay   time.Duration
	Timeout       time.Duration
	CookiesFile   string
}

// newBrowser starts Chrome and returns a tab context with network events
// enabled. The returned cancel closes the tab and the browser.
func newBrowser(ctx context.Context, opts BrowserOptions) (context.Context, context.CancelFunc, error) {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(ua),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("starting browser: %w", err)
	}
	return tabCtx, cancel, nil
}

// setCookies installs a saved session into the browser.
func setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if len(cookies) == 0 {
			return nil
		}
		if err := network.SetCookies(toCookieParams(cookies)).Do(ctx); err != nil {
			return fmt.Errorf("setting cookies: %w", err)
		}
		return nil
	})
}

// scrollPage scrolls to the bottom count times so lazy-loaded cards render.
func scrollPage(count int, delay time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for i := 0; i < count; i++ {
			var ok bool
			if err := chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); true`, &ok).Do(ctx); err != nil {
				return fmt.Errorf("scrolling: %w", err)
			}
			if err := chromedp.Sleep(delay).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// BrowserScraper searches LinkedIn jobs in a real Chrome. It runs with the
// saved cookie session when one exists and as a public visitor otherwise.
type BrowserScraper struct {
	baseURL    string
	opts       BrowserOptions
	defaultMax int
	logger     *slog.Logger
}

// NewBrowserScraper creates a BrowserScraper. defaultMax caps results when
// the criteria do not set MaxJobs.
func NewBrowserScraper(baseURL string, opts BrowserOptions, defaultMax int, logger *slog.Logger) *BrowserScraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &BrowserScraper{
		baseURL:    baseURL,
		opts:       opts,
		defaultMax: defaultMax,
		logger:     logger,
	}
}

// Search loads the results page, scrolls it, and extracts job cards.
func (s *BrowserScraper) Search(ctx context.Context, c model.SearchCriteria) ([]model.Job, error) {
	max := c.MaxJobs
	if max <= 0 {
		max = s.defaultMax
	}

	cookies, err := loadSession(s.opts.CookiesFile)
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		s.logger.Debug("no cookie session, searching as guest", "cookies_file", s.opts.CookiesFile)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	tab, closeBrowser, err := newBrowser(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	defer closeBrowser()

	searchURL := BuildSearchURL(s.baseURL, c)
	s.logger.Debug("loading search page", "url", searchURL)

	var html string
	err = chromedp.Run(tab,
		setCookies(cookies),
		chromedp.Navigate(searchURL),
		chromedp.Sleep(s.opts.PageLoadDelay),
		scrollPage(s.opts.ScrollCount, s.opts.ScrollDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("linkedin search %q: %w", c.Keywords, err)
	}

	jobs, err := ExtractJobs(html, max)
	if err != nil {
		return nil, err
	}
	s.logger.Info("linkedin search complete", "keywords", c.Keywords, "location", c.Location, "jobs", len(jobs))
	return jobs, nil
}

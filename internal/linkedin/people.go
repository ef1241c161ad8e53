package linkedin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/amishk599/jobhunter/internal/model"
)

// UnknownName is substituted when a people result has no visible name.
const UnknownName = "LinkedIn Member"

var (
	personSelectors       = []string{".reusable-search__result-container", ".entity-result", "li.search-result"}
	personNameSelectors   = []string{".entity-result__title-text a span[aria-hidden='true']", ".entity-result__title-text a", ".actor-name"}
	personTitleSelectors  = []string{".entity-result__primary-subtitle", ".subline-level-1"}
	personDegreeSelectors = []string{".entity-result__badge-text", ".dist-value"}
	personLinkSelectors   = []string{".entity-result__title-text a", "a.app-aware-link[href*='/in/']", "a[href*='/in/']"}
)

// ExtractPeople parses a people search results page into referrals at
// company. At most max results are returned when max is positive.
func ExtractPeople(html, company string, max int) ([]model.Referral, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing people page: %w", err)
	}

	var results *goquery.Selection
	for _, s := range personSelectors {
		if found := doc.Find(s); found.Length() > 0 {
			results = found
			break
		}
	}
	if results == nil {
		return nil, nil
	}

	var refs []model.Referral
	seen := make(map[string]bool)
	results.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		ref := model.Referral{
			Name:            orPlaceholder(firstText(card, personNameSelectors), UnknownName),
			Title:           firstText(card, personTitleSelectors),
			Company:         company,
			ConnectionLevel: parseDegree(firstText(card, personDegreeSelectors)),
		}
		if href := firstAttr(card, personLinkSelectors, "href"); href != "" {
			ref.ProfileURL = cleanJobURL(href)
		}
		// Anonymous "LinkedIn Member" rows have no profile link and cannot refer.
		if ref.ProfileURL == "" || seen[ref.ProfileURL] {
			return true
		}
		seen[ref.ProfileURL] = true
		ref.IntroductionNeeded = ref.ConnectionLevel != 1
		refs = append(refs, ref)
		return max <= 0 || len(refs) < max
	})
	return refs, nil
}

// parseDegree reads a badge like "• 2nd" into 2. Third degree and beyond,
// or no badge at all, are reported as 0.
func parseDegree(badge string) int {
	switch {
	case strings.Contains(badge, "1st"):
		return 1
	case strings.Contains(badge, "2nd"):
		return 2
	}
	return 0
}

// PeopleSearcher looks up network contacts at a company. People search is
// only available to a signed-in session.
type PeopleSearcher struct {
	baseURL string
	opts    BrowserOptions
	logger  *slog.Logger
	now     func() time.Time
}

// NewPeopleSearcher creates a PeopleSearcher that reuses the browser
// settings of the job scraper.
func NewPeopleSearcher(baseURL string, opts BrowserOptions, logger *slog.Logger) *PeopleSearcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &PeopleSearcher{baseURL: baseURL, opts: opts, logger: logger, now: time.Now}
}

// FindPeople returns up to max 1st and 2nd degree contacts at company.
// It returns model.ErrNotAuthenticated when no valid session is saved.
func (p *PeopleSearcher) FindPeople(ctx context.Context, company string, max int) ([]model.Referral, error) {
	cookies, err := loadSession(p.opts.CookiesFile)
	if err != nil {
		return nil, err
	}
	if !hasSessionCookie(cookies, p.now()) {
		return nil, model.ErrNotAuthenticated
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	tab, closeBrowser, err := newBrowser(ctx, p.opts)
	if err != nil {
		return nil, err
	}
	defer closeBrowser()

	var (
		html     string
		location string
	)
	err = chromedp.Run(tab,
		setCookies(cookies),
		chromedp.Navigate(BuildPeopleSearchURL(p.baseURL, company)),
		chromedp.Sleep(p.opts.PageLoadDelay),
		scrollPage(1, p.opts.ScrollDelay),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("people search %q: %w", company, err)
	}
	if !sessionActive(location) {
		return nil, fmt.Errorf("people search %q redirected to %s: %w", company, location, model.ErrNotAuthenticated)
	}

	refs, err := ExtractPeople(html, company, max)
	if err != nil {
		return nil, err
	}
	p.logger.Info("people search complete", "company", company, "contacts", len(refs))
	return refs, nil
}

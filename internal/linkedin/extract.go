package linkedin

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobhunter/internal/model"
)

// LinkedIn ships several card layouts (guest, public search, logged-in
// search). Each field tries its selectors in order and the first non-empty match wins.
var (
	cardSelectors = []string{".job-search-card", ".base-search-card", ".job-card-container", ".base-card"}

	titleSelectors    = []string{".job-search-card__title", ".base-search-card__title", ".job-card-list__title", "h3"}
	companySelectors  = []string{".job-search-card__subtitle", ".base-search-card__subtitle", ".job-card-container__company-name", "h4"}
	locationSelectors = []string{".job-search-card__location", ".job-card-container__metadata-item"}
	linkSelectors     = []string{"a.job-search-card__title", "a.base-card__full-link", "a.job-card-list__title", "a[href*='/jobs/view/']"}
	postedSelectors   = []string{".job-search-card__listdate", ".job-search-card__listdate--new", "time"}
	salarySelectors   = []string{".job-search-card__salary-info"}
)

var jobIDPattern = regexp.MustCompile(`/jobs/view/(?:[^/?]*-)?(\d+)`)

// ExtractJobs parses a results page and returns at most max jobs. A max of
// zero or less returns every card found.
func ExtractJobs(html string, max int) ([]model.Job, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}
	return ExtractCards(doc.Selection, max), nil
}

// ExtractCards finds job cards under sel. Missing fields never drop a card;
// they are filled with the model placeholders instead.
func ExtractCards(sel *goquery.Selection, max int) []model.Job {
	cards := findCards(sel)
	var jobs []model.Job
	seen := make(map[string]bool)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		job := extractCard(card)
		key := job.Key()
		if key != "" && seen[key] {
			return true
		}
		seen[key] = true
		jobs = append(jobs, job)
		return max <= 0 || len(jobs) < max
	})
	return jobs
}

func findCards(sel *goquery.Selection) *goquery.Selection {
	for _, s := range cardSelectors {
		if found := sel.Find(s); found.Length() > 0 {
			return found
		}
	}
	return sel.Find(cardSelectors[0])
}

func extractCard(card *goquery.Selection) model.Job {
	job := model.Job{
		Title:       orPlaceholder(firstText(card, titleSelectors), model.UnknownTitle),
		Company:     orPlaceholder(firstText(card, companySelectors), model.UnknownCompany),
		Location:    orPlaceholder(firstText(card, locationSelectors), model.UnknownLocation),
		PostedText:  orPlaceholder(firstText(card, postedSelectors), model.UnknownPosted),
		SalaryRange: firstText(card, salarySelectors),
		Source:      model.SourceLinkedIn,
	}

	if href := firstAttr(card, linkSelectors, "href"); href != "" {
		job.URL = cleanJobURL(href)
	}
	job.ExternalID = externalID(card, job.URL)
	if job.URL == "" && job.ExternalID != "" {
		job.URL = DefaultBaseURL + "/jobs/view/" + job.ExternalID + "/"
	}

	if dt := firstAttr(card, postedSelectors, "datetime"); dt != "" {
		if t, err := time.Parse("2006-01-02", dt); err == nil {
			job.PostedAt = &t
		}
	}
	return job
}

func firstText(card *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if text := collapse(card.Find(s).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstAttr(card *goquery.Selection, selectors []string, attr string) string {
	for _, s := range selectors {
		if v, ok := card.Find(s).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// externalID prefers the card's entity URN ("urn:li:jobPosting:123") and
// falls back to the numeric id in the job URL.
func externalID(card *goquery.Selection, jobURL string) string {
	for _, attr := range []string{"data-entity-urn", "data-job-id"} {
		v, ok := card.Attr(attr)
		if !ok {
			v, ok = card.Find("[" + attr + "]").First().Attr(attr)
		}
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if i := strings.LastIndex(v, ":"); i >= 0 {
			v = v[i+1:]
		}
		if v != "" {
			return v
		}
	}
	if m := jobIDPattern.FindStringSubmatch(jobURL); m != nil {
		return m[1]
	}
	return ""
}

// cleanJobURL drops tracking parameters and resolves relative links.
func cleanJobURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if !u.IsAbs() {
		base, _ := url.Parse(DefaultBaseURL)
		u = base.ResolveReference(u)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

package linkedin

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobhunter/internal/model"
)

// DefaultBaseURL is the LinkedIn origin used when none is configured.
const DefaultBaseURL = "https://www.linkedin.com"

const (
	searchPath       = "/jobs/search/"
	guestSearchPath  = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	peopleSearchPath = "/search/results/people/"
)

// BuildSearchURL returns the job search page URL for c. Location and the
// experience filter are only added when set.
func BuildSearchURL(baseURL string, c model.SearchCriteria) string {
	return buildURL(baseURL, searchPath, searchQuery(c))
}

// BuildGuestURL returns the public guest endpoint URL for one page of results
// starting at offset start.
func BuildGuestURL(baseURL string, c model.SearchCriteria, start int) string {
	q := searchQuery(c)
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	}
	return buildURL(baseURL, guestSearchPath, q)
}

// BuildPeopleSearchURL returns a people search restricted to the user's 1st
// and 2nd degree network for the given company.
func BuildPeopleSearchURL(baseURL, company string) string {
	q := url.Values{}
	q.Set("keywords", company)
	q.Set("network", `["F","S"]`)
	q.Set("origin", "FACETED_SEARCH")
	return buildURL(baseURL, peopleSearchPath, q)
}

func searchQuery(c model.SearchCriteria) url.Values {
	q := url.Values{}
	q.Set("keywords", strings.TrimSpace(c.Keywords))
	if loc := strings.TrimSpace(c.Location); loc != "" {
		q.Set("location", loc)
	}
	if code := c.Experience.FilterCode(); code != "" {
		q.Set("f_E", code)
	}
	return q
}

func buildURL(baseURL, path string, q url.Values) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// Encode turns spaces into "+"; LinkedIn accepts both but its own links use %20.
	return strings.TrimRight(baseURL, "/") + path + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

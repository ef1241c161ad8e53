package filter

import (
	"strings"

	"github.com/amishk599/jobhunter/internal/config"
	"github.com/amishk599/jobhunter/internal/model"
)

// KeywordFilter narrows scraped jobs by title and location. A job must
// contain one of the include keywords (when any are set) and none of the
// exclude keywords. Matching is a case-insensitive substring test.
type KeywordFilter struct {
	titleInclude    []string
	titleExclude    []string
	locationInclude []string
	locationExclude []string
}

// New builds a KeywordFilter from the filters config section.
func New(cfg config.FilterConfig) *KeywordFilter {
	return &KeywordFilter{
		titleInclude:    lowerAll(cfg.TitleKeywords),
		titleExclude:    lowerAll(cfg.TitleExcludeKeywords),
		locationInclude: lowerAll(cfg.Locations),
		locationExclude: lowerAll(cfg.ExcludeLocations),
	}
}

// Match reports whether the job passes every configured rule. Empty rule
// lists pass all jobs.
func (f *KeywordFilter) Match(job model.Job) bool {
	title := strings.ToLower(job.Title)
	location := strings.ToLower(job.Location)

	if len(f.titleInclude) > 0 && !containsAny(title, f.titleInclude) {
		return false
	}
	if containsAny(title, f.titleExclude) {
		return false
	}
	if len(f.locationInclude) > 0 && !containsAny(location, f.locationInclude) {
		return false
	}
	return !containsAny(location, f.locationExclude)
}

// Apply returns the jobs that match f, preserving order.
func Apply(f model.JobFilter, jobs []model.Job) []model.Job {
	var out []model.Job
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}

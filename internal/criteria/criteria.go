// Package criteria parses the free-text search criteria typed into chat,
// e.g. "Software Engineer, San Francisco, CA, Senior, Tech Company".
package criteria

import (
	"errors"
	"strings"

	"github.com/amishk599/jobhunter/internal/model"
)

// ErrNoKeywords is returned when the criteria string has no leading keywords.
var ErrNoKeywords = errors.New("search criteria must start with job keywords")

// Parse splits text on commas. The first segment is the keyword query. The
// first later segment naming an experience level sets the level; segments
// between the keywords and the level form the location and anything after
// the level is kept as Extra. Without a level, every remaining segment is
// part of the location.
func Parse(text string) (model.SearchCriteria, error) {
	var segments []string
	for _, s := range strings.Split(text, ",") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return model.SearchCriteria{}, ErrNoKeywords
	}

	c := model.SearchCriteria{Keywords: segments[0]}
	rest := segments[1:]

	levelAt := -1
	for i, s := range rest {
		if lvl, ok := ParseExperienceLevel(s); ok {
			c.Experience = lvl
			levelAt = i
			break
		}
	}

	locationParts := rest
	if levelAt >= 0 {
		locationParts = rest[:levelAt]
		c.Extra = append(c.Extra, rest[levelAt+1:]...)
	}
	c.Location = strings.Join(locationParts, ", ")
	return c, nil
}

// ParseExperienceLevel accepts exactly the LinkedIn seniority levels
// (case-insensitive, with "mid senior" and "mid_senior" spellings). Anything
// else reports false and the search runs without an experience filter.
func ParseExperienceLevel(s string) (model.ExperienceLevel, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for _, lvl := range model.ExperienceLevels {
		if norm == string(lvl) {
			return lvl, true
		}
	}
	return "", false
}

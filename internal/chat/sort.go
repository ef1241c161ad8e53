package chat

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/amishk599/jobhunter/internal/model"
)

// SortField names a sortable job column.
type SortField string

const (
	SortTitle    SortField = "title"
	SortCompany  SortField = "company"
	SortLocation SortField = "location"
	SortPosted   SortField = "posted"
	SortURL      SortField = "url"
)

// SortFields lists the accepted fields in help order.
var SortFields = []SortField{SortTitle, SortCompany, SortLocation, SortPosted, SortURL}

// ParseSortField accepts a field name case-insensitively. "date" is an alias
// for posted and "link" for url.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortTitle, SortCompany, SortLocation, SortPosted, SortURL:
		return f, nil
	case "date":
		return SortPosted, nil
	case "link":
		return SortURL, nil
	}
	return "", fmt.Errorf("unknown sort field %q (use one of %s)", s, joinFields())
}

// SortJobs returns a sorted copy of jobs. The sort is stable, and descending
// order uses the reversed comparison, so for distinct keys a descending sort
// is exactly the reverse of an ascending one.
func SortJobs(jobs []model.Job, field SortField, desc bool) []model.Job {
	out := slices.Clone(jobs)
	cmp := comparator(field)
	slices.SortStableFunc(out, func(a, b model.Job) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}

func comparator(field SortField) func(a, b model.Job) int {
	text := func(get func(model.Job) string) func(a, b model.Job) int {
		return func(a, b model.Job) int {
			return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
		}
	}
	switch field {
	case SortCompany:
		return text(func(j model.Job) string { return j.Company })
	case SortLocation:
		return text(func(j model.Job) string { return j.Location })
	case SortURL:
		return text(func(j model.Job) string { return j.URL })
	case SortPosted:
		// Jobs without a posting date sort before dated ones.
		return func(a, b model.Job) int {
			return postedTime(a).Compare(postedTime(b))
		}
	}
	return text(func(j model.Job) string { return j.Title })
}

func postedTime(j model.Job) time.Time {
	if j.PostedAt == nil {
		return time.Time{}
	}
	return *j.PostedAt
}

func joinFields() string {
	names := make([]string, len(SortFields))
	for i, f := range SortFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

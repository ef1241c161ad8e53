package chat

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/amishk599/jobhunter/internal/model"
)

// PageCount returns the number of pages needed for n jobs, at least 1.
func PageCount(n, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if n == 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// RenderTable renders one page of jobs as a Markdown table. page is 1-based
// and clamped to the valid range.
func RenderTable(jobs []model.Job, page, perPage int) string {
	if len(jobs) == 0 {
		return "No jobs to show."
	}
	if perPage < 1 {
		perPage = 1
	}
	pages := PageCount(len(jobs), perPage)
	page = min(max(page, 1), pages)

	start := (page - 1) * perPage
	end := min(start+perPage, len(jobs))

	var b strings.Builder
	b.WriteString("| # | Title | Company | Location | Posted | Link |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for i, j := range jobs[start:end] {
		link := "-"
		if j.URL != "" {
			link = fmt.Sprintf("[View](%s)", j.URL)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			start+i+1, cell(j.Title), cell(j.Company), cell(j.Location), cell(j.PostedText), link)
	}
	fmt.Fprintf(&b, "\nPage %d of %d (%d jobs)", page, pages, len(jobs))
	return b.String()
}

// RenderReferrals renders contacts as a Markdown table, closest connections
// first. Contacts sharing a profile URL are listed once.
func RenderReferrals(refs []model.Referral) string {
	if len(refs) == 0 {
		return "No referral contacts found."
	}
	refs = slices.Clone(refs)
	slices.SortStableFunc(refs, func(a, b model.Referral) int {
		return cmp.Compare(degreeRank(a.ConnectionLevel), degreeRank(b.ConnectionLevel))
	})
	var b strings.Builder
	b.WriteString("| Name | Headline | Company | Degree | Profile |\n")
	b.WriteString("|---|---|---|---|---|\n")
	seen := make(map[string]bool)
	for _, r := range refs {
		if seen[r.ContactKey()] {
			continue
		}
		seen[r.ContactKey()] = true
		fmt.Fprintf(&b, "| %s | %s | %s | %s | [Profile](%s) |\n",
			cell(r.Name), cell(r.Title), cell(r.Company), degree(r.ConnectionLevel), r.ProfileURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func degree(level int) string {
	switch level {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	}
	return "3rd+"
}

// degreeRank orders 1st before 2nd before unknown.
func degreeRank(level int) int {
	if level <= 0 {
		return 3
	}
	return level
}

// cell escapes pipes and flattens newlines so a value stays in its column.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

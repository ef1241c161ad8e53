package filter

import (
	"testing"

	"github.com/amishk599/jobhunter/internal/config"
	"github.com/amishk599/jobhunter/internal/model"
)

func job(title, location string) model.Job {
	return model.Job{Title: title, Location: location}
}

func TestKeywordFilter_Match(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.FilterConfig
		job       model.Job
		wantMatch bool
	}{
		{
			name:      "matches both title and location",
			cfg:       config.FilterConfig{TitleKeywords: []string{"software engineer", "backend"}, Locations: []string{"United States", "Remote"}},
			job:       job("Software Engineer", "Remote - US"),
			wantMatch: true,
		},
		{
			name:      "title match but location miss",
			cfg:       config.FilterConfig{TitleKeywords: []string{"software engineer"}, Locations: []string{"United States", "Remote"}},
			job:       job("Software Engineer", "London, UK"),
			wantMatch: false,
		},
		{
			name:      "case insensitive matching",
			cfg:       config.FilterConfig{TitleKeywords: []string{"FULLSTACK"}, Locations: []string{"us"}},
			job:       job("Fullstack Developer", "US Remote"),
			wantMatch: true,
		},
		{
			name:      "excluded title keyword wins over include",
			cfg:       config.FilterConfig{TitleKeywords: []string{"engineer"}, TitleExcludeKeywords: []string{"senior", "staff"}},
			job:       job("Senior Software Engineer", "Remote"),
			wantMatch: false,
		},
		{
			name:      "excluded location",
			cfg:       config.FilterConfig{ExcludeLocations: []string{"on-site"}},
			job:       job("Engineer", "Austin, TX (On-site)"),
			wantMatch: false,
		},
		{
			name:      "blank keywords are ignored",
			cfg:       config.FilterConfig{TitleKeywords: []string{"  "}},
			job:       job("Any Role", "Anywhere"),
			wantMatch: true,
		},
		{
			name:      "empty config passes all",
			cfg:       config.FilterConfig{},
			job:       job("Any Role", "Anywhere"),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.cfg).Match(tt.job)
			if got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestApply_PreservesOrder(t *testing.T) {
	f := New(config.FilterConfig{TitleExcludeKeywords: []string{"intern"}})
	jobs := []model.Job{job("B Engineer", ""), job("Intern", ""), job("A Engineer", "")}

	got := Apply(f, jobs)
	if len(got) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(got))
	}
	if got[0].Title != "B Engineer" || got[1].Title != "A Engineer" {
		t.Errorf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
}

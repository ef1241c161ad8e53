package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/amishk599/jobhunter/internal/crew"
	"github.com/amishk599/jobhunter/internal/model"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  []crew.State
	jobs   []model.Job
	refs   []model.Referral
	events []crew.Event
	err    error
	block  chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, state *crew.State, report func(crew.Event)) error {
	f.mu.Lock()
	f.calls = append(f.calls, *state)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	for _, ev := range f.events {
		report(ev)
	}
	state.Jobs = f.jobs
	state.Referrals = f.refs
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(r Runner, opts Options) *Session {
	return NewSession(r, opts, discardLogger())
}

func lastOf(replies []Reply) Reply {
	if len(replies) == 0 {
		return Reply{}
	}
	return replies[len(replies)-1]
}

func TestSetJobsPerPage(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"5", 5, false},
		{" 25 ", 25, false},
		{"100", 100, false},
		{"0", 10, true},
		{"-3", 10, true},
		{"101", 10, true},
		{"five", 10, true},
		{"2.5", 10, true},
		{"", 10, true},
		{"10abc", 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s := newTestSession(&fakeRunner{}, Options{JobsPerPage: 10})
			err := s.SetJobsPerPage(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := s.JobsPerPage(); got != tt.want {
				t.Errorf("JobsPerPage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandle_JobsPerPageCommand(t *testing.T) {
	s := newTestSession(&fakeRunner{}, Options{JobsPerPage: 10})

	r := lastOf(s.Handle(context.Background(), "Jobs per page: 3"))
	if r.Kind != KindInfo || s.JobsPerPage() != 3 {
		t.Errorf("reply = %+v, perPage = %d", r, s.JobsPerPage())
	}

	r = lastOf(s.Handle(context.Background(), "jobs per page: lots"))
	if r.Kind != KindError || !strings.Contains(r.Text, "whole number") {
		t.Errorf("reply = %+v", r)
	}
	if s.JobsPerPage() != 3 {
		t.Errorf("invalid value changed page size to %d", s.JobsPerPage())
	}
}

func TestHandle_SearchRendersTable(t *testing.T) {
	runner := &fakeRunner{
		jobs: makeJobs(7),
		events: []crew.Event{
			{Step: 1, Total: 4, Role: "Job Search Specialist", Status: crew.StatusRunning, Message: "Searching"},
			{Step: 1, Total: 4, Role: "Job Search Specialist", Status: crew.StatusDone, Message: "Found 7 jobs"},
			{Step: 3, Total: 4, Role: "Resume Optimizer", Status: crew.StatusSkipped, Message: "skipped: no resume"},
		},
	}
	s := newTestSession(runner, Options{JobsPerPage: 5, MaxJobs: 20, ResumePath: "cv.md"})

	replies := s.Handle(context.Background(), "Software Engineer, San Francisco, CA, Senior")
	if len(runner.calls) != 1 {
		t.Fatalf("runner called %d times", len(runner.calls))
	}
	st := runner.calls[0]
	if st.Criteria.Keywords != "Software Engineer" || st.Criteria.Experience != model.ExperienceSenior {
		t.Errorf("criteria = %+v", st.Criteria)
	}
	if st.Criteria.MaxJobs != 20 || st.ResumePath != "cv.md" {
		t.Errorf("state = %+v", st)
	}

	var progress []string
	for _, r := range replies {
		if r.Kind == KindProgress {
			progress = append(progress, r.Text)
		}
	}
	want := []string{
		"[1/4] Job Search Specialist: Searching...",
		"[1/4] Job Search Specialist: Found 7 jobs",
		"[3/4] Resume Optimizer skipped: no resume",
	}
	if strings.Join(progress, "\n") != strings.Join(want, "\n") {
		t.Errorf("progress = %q", progress)
	}

	last := lastOf(replies)
	if last.Kind != KindTable || !strings.HasSuffix(last.Text, "Page 1 of 2 (7 jobs)") {
		t.Errorf("last reply = %+v", last)
	}

	r := lastOf(s.Handle(context.Background(), "next"))
	if !strings.HasSuffix(r.Text, "Page 2 of 2 (7 jobs)") {
		t.Errorf("next = %+v", r)
	}
	r = lastOf(s.Handle(context.Background(), "next"))
	if r.Kind != KindError {
		t.Errorf("next past end = %+v", r)
	}
	r = lastOf(s.Handle(context.Background(), "page 1"))
	if !strings.HasSuffix(r.Text, "Page 1 of 2 (7 jobs)") {
		t.Errorf("page 1 = %+v", r)
	}
}

func TestHandle_SortCommand(t *testing.T) {
	runner := &fakeRunner{jobs: []model.Job{
		{Title: "Bravo", Company: "B"}, {Title: "Alpha", Company: "C"}, {Title: "Charlie", Company: "A"},
	}}
	s := newTestSession(runner, Options{JobsPerPage: 10})
	s.Handle(context.Background(), "engineer")

	r := lastOf(s.Handle(context.Background(), "sort by title"))
	if r.Kind != KindTable {
		t.Fatalf("reply = %+v", r)
	}
	if got := titles(s.Jobs()); strings.Join(got, ",") != "Alpha,Bravo,Charlie" {
		t.Errorf("asc = %v", got)
	}

	s.Handle(context.Background(), "Sort By Title DESC")
	if got := titles(s.Jobs()); strings.Join(got, ",") != "Charlie,Bravo,Alpha" {
		t.Errorf("desc = %v", got)
	}

	if r := lastOf(s.Handle(context.Background(), "sort by salary")); r.Kind != KindError {
		t.Errorf("unknown field = %+v", r)
	}
	if r := lastOf(s.Handle(context.Background(), "sort by title sideways")); r.Kind != KindError {
		t.Errorf("bad direction = %+v", r)
	}

	// The chosen order applies to the next search.
	s.Handle(context.Background(), "sort by company")
	s.Handle(context.Background(), "engineer")
	if got := titles(s.Jobs()); strings.Join(got, ",") != "Charlie,Bravo,Alpha" {
		t.Errorf("after new search = %v", got)
	}
}

func TestHandle_SearchError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("search: boom")}
	s := newTestSession(runner, Options{Debug: true})

	replies := s.Handle(context.Background(), "engineer")
	var errReply Reply
	for _, r := range replies {
		if r.Kind == KindError {
			errReply = r
		}
	}
	if !strings.Contains(errReply.Text, "search: boom") || !strings.Contains(errReply.Text, "```") {
		t.Errorf("error reply = %+v", errReply)
	}
	if r := lastOf(s.Handle(context.Background(), "show")); r.Kind != KindError {
		t.Errorf("show with no results = %+v", r)
	}
}

func TestHandle_NoJobs(t *testing.T) {
	s := newTestSession(&fakeRunner{}, Options{})
	r := lastOf(s.Handle(context.Background(), "engineer"))
	if r.Kind != KindInfo || !strings.Contains(r.Text, "No jobs found") {
		t.Errorf("reply = %+v", r)
	}
}

func TestHandle_BadCriteria(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestSession(runner, Options{})
	r := lastOf(s.Handle(context.Background(), " , ,"))
	if r.Kind != KindError {
		t.Errorf("reply = %+v", r)
	}
	if len(runner.calls) != 0 {
		t.Error("runner called for invalid criteria")
	}
}

func TestHandle_ResumeAndReferrals(t *testing.T) {
	runner := &fakeRunner{
		jobs: makeJobs(1),
		refs: []model.Referral{
			{JobID: 1, Name: "Jane", Company: "Acme", ConnectionLevel: 1, ProfileURL: "https://www.linkedin.com/in/jane"},
			{JobID: 2, Name: "Jane", Company: "Acme", ConnectionLevel: 1, ProfileURL: "https://www.linkedin.com/in/jane"},
		},
	}
	s := newTestSession(runner, Options{})

	if r := lastOf(s.Handle(context.Background(), `resume: "/tmp/cv.md"`)); r.Kind != KindInfo {
		t.Fatalf("resume reply = %+v", r)
	}
	replies := s.Handle(context.Background(), "engineer")
	if runner.calls[0].ResumePath != "/tmp/cv.md" {
		t.Errorf("resume path = %q", runner.calls[0].ResumePath)
	}
	if r := lastOf(replies); !strings.Contains(r.Text, "Found 1 referral contacts") {
		t.Errorf("last reply = %+v", r)
	}
	if r := lastOf(s.Handle(context.Background(), "referrals")); !strings.Contains(r.Text, "| Jane |") {
		t.Errorf("referrals = %+v", r)
	}
}

func TestHandle_RejectsConcurrentSearch(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s := newTestSession(runner, Options{})

	done := make(chan struct{})
	go func() {
		s.Handle(context.Background(), "engineer")
		close(done)
	}()
	// Wait until the first search is inside the runner.
	for {
		runner.mu.Lock()
		n := len(runner.calls)
		runner.mu.Unlock()
		if n == 1 {
			break
		}
	}

	r := lastOf(s.Handle(context.Background(), "designer"))
	if r.Kind != KindError || !strings.Contains(r.Text, "already running") {
		t.Errorf("reply = %+v", r)
	}
	close(runner.block)
	<-done
}

func TestHandle_Help(t *testing.T) {
	s := newTestSession(&fakeRunner{}, Options{})
	r := lastOf(s.Handle(context.Background(), "HELP"))
	for _, want := range []string{"jobs per page", "sort by", "posted"} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestIsCommand(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"help", true},
		{"  NEXT ", true},
		{"prev", true},
		{"referrals", true},
		{"jobs per page: 5", true},
		{"sort by company desc", true},
		{"page 2", true},
		{"resume: ~/cv.md", true},
		{"Software Engineer, Seattle", false},
		{"Rust Engineer", false},
	}
	for _, tt := range tests {
		if got := IsCommand(tt.text); got != tt.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

// Package chat turns chat messages into crew runs and renders the results.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/amishk599/jobhunter/internal/criteria"
	"github.com/amishk599/jobhunter/internal/crew"
	"github.com/amishk599/jobhunter/internal/model"
)

// maxJobsPerPage bounds the page size so a table stays readable.
const maxJobsPerPage = 100

// Kind classifies a reply for the front-end.
type Kind string

const (
	KindInfo     Kind = "info"
	KindProgress Kind = "progress"
	KindTable    Kind = "table"
	KindError    Kind = "error"
)

// Reply is one chat message. Text is Markdown.
type Reply struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Runner runs the job hunter crew.
type Runner interface {
	Run(ctx context.Context, state *crew.State, report func(crew.Event)) error
}

// Options are the per-session defaults.
type Options struct {
	JobsPerPage int
	MaxJobs     int
	ResumePath  string
	Debug       bool // include the wrapped error chain in error replies
}

var (
	perPageCmd = regexp.MustCompile(`(?i)^jobs\s+per\s+page\s*:?\s*(.*)$`)
	sortCmd    = regexp.MustCompile(`(?i)^sort\s+by\s+(\S+)(?:\s+(\S+))?$`)
	pageCmd    = regexp.MustCompile(`(?i)^page\s+(\S+)$`)
	resumeCmd  = regexp.MustCompile(`(?i)^resume\s*:\s*(.*)$`)
)

// Session holds one user's chat state: the last results and display
// preferences. It is safe for concurrent use; only one search runs at a time.
type Session struct {
	runner Runner
	logger *slog.Logger

	mu         sync.Mutex
	perPage    int
	maxJobs    int
	resumePath string
	debug      bool
	sortField  SortField
	sortDesc   bool
	sorted     bool
	page       int
	jobs       []model.Job
	referrals  []model.Referral
	busy       bool
}

// NewSession creates a session that runs searches with runner.
func NewSession(runner Runner, opts Options, logger *slog.Logger) *Session {
	perPage := opts.JobsPerPage
	if perPage < 1 {
		perPage = 10
	}
	return &Session{
		runner:     runner,
		logger:     logger,
		perPage:    perPage,
		maxJobs:    opts.MaxJobs,
		resumePath: opts.ResumePath,
		debug:      opts.Debug,
		page:       1,
	}
}

// Welcome is the greeting shown when a chat starts.
func Welcome() Reply {
	return Reply{Kind: KindInfo, Text: "Welcome to Job Hunter! I'll find jobs, tailor your resume, and look for referrals.\n\n" +
		"Enter your job search criteria, e.g. `Software Engineer, San Francisco, CA, Senior, Tech Company`.\n" +
		"Send `help` to see all commands."}
}

// IsCommand reports whether text is a chat command rather than search
// criteria. Commands never start a crew run.
func IsCommand(text string) bool {
	text = strings.TrimSpace(text)
	switch strings.ToLower(text) {
	case "", "help", "next", "prev", "previous", "show", "jobs", "referrals":
		return true
	}
	return perPageCmd.MatchString(text) || sortCmd.MatchString(text) ||
		pageCmd.MatchString(text) || resumeCmd.MatchString(text)
}

// Busy reports whether a search is running in this session.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Handle processes one message and returns every reply it produced.
func (s *Session) Handle(ctx context.Context, text string) []Reply {
	var out []Reply
	s.HandleStream(ctx, text, func(r Reply) { out = append(out, r) })
	return out
}

// HandleStream processes one message, calling emit for each reply as it is
// produced. Progress from a running search is streamed this way.
func (s *Session) HandleStream(ctx context.Context, text string, emit func(Reply)) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	switch {
	case text == "":
		emit(errorReply("Send job criteria or `help`."))
	case lower == "help":
		emit(Reply{Kind: KindInfo, Text: helpText()})
	case lower == "next":
		emit(s.turnPage(func(p int) int { return p + 1 }))
	case lower == "prev" || lower == "previous":
		emit(s.turnPage(func(p int) int { return p - 1 }))
	case lower == "show" || lower == "jobs":
		emit(s.turnPage(func(p int) int { return p }))
	case lower == "referrals":
		emit(s.showReferrals())
	case perPageCmd.MatchString(text):
		emit(s.setPerPage(perPageCmd.FindStringSubmatch(text)[1]))
	case sortCmd.MatchString(text):
		m := sortCmd.FindStringSubmatch(text)
		emit(s.setSort(m[1], m[2]))
	case pageCmd.MatchString(text):
		emit(s.gotoPage(pageCmd.FindStringSubmatch(text)[1]))
	case resumeCmd.MatchString(text):
		emit(s.setResume(resumeCmd.FindStringSubmatch(text)[1]))
	default:
		s.search(ctx, text, emit)
	}
}

// SetJobsPerPage validates and applies a page size given as text. Only
// positive whole numbers are accepted; the previous value is kept otherwise.
func (s *Session) SetJobsPerPage(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > maxJobsPerPage {
		return fmt.Errorf("jobs per page must be a whole number between 1 and %d, got %q", maxJobsPerPage, strings.TrimSpace(value))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perPage = n
	s.page = 1
	return nil
}

// JobsPerPage returns the current page size.
func (s *Session) JobsPerPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perPage
}

// Jobs returns the last results in display order.
func (s *Session) Jobs() []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Job(nil), s.jobs...)
}

func (s *Session) setPerPage(value string) Reply {
	if err := s.SetJobsPerPage(value); err != nil {
		return errorReply(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := fmt.Sprintf("Showing %d jobs per page.", s.perPage)
	if len(s.jobs) == 0 {
		return Reply{Kind: KindInfo, Text: msg}
	}
	return Reply{Kind: KindTable, Text: msg + "\n\n" + RenderTable(s.jobs, s.page, s.perPage)}
}

func (s *Session) setSort(fieldArg, dirArg string) Reply {
	field, err := ParseSortField(fieldArg)
	if err != nil {
		return errorReply(err.Error())
	}
	var desc bool
	switch strings.ToLower(dirArg) {
	case "", "asc", "ascending":
	case "desc", "descending":
		desc = true
	default:
		return errorReply(fmt.Sprintf("sort direction must be asc or desc, got %q", dirArg))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortField, s.sortDesc, s.sorted = field, desc, true
	dir := "ascending"
	if desc {
		dir = "descending"
	}
	if len(s.jobs) == 0 {
		return Reply{Kind: KindInfo, Text: fmt.Sprintf("Results will be sorted by %s (%s).", field, dir)}
	}
	s.jobs = SortJobs(s.jobs, field, desc)
	s.page = 1
	return Reply{Kind: KindTable, Text: fmt.Sprintf("Sorted %d jobs by %s (%s).\n\n%s",
		len(s.jobs), field, dir, RenderTable(s.jobs, s.page, s.perPage))}
}

func (s *Session) gotoPage(arg string) Reply {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return errorReply(fmt.Sprintf("page must be a whole number, got %q", arg))
	}
	return s.turnPage(func(int) int { return n })
}

func (s *Session) turnPage(next func(int) int) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jobs) == 0 {
		return errorReply("No results yet. Enter job criteria to search.")
	}
	pages := PageCount(len(s.jobs), s.perPage)
	p := next(s.page)
	if p < 1 || p > pages {
		return errorReply(fmt.Sprintf("page %d is out of range (1-%d)", p, pages))
	}
	s.page = p
	return Reply{Kind: KindTable, Text: RenderTable(s.jobs, s.page, s.perPage)}
}

func (s *Session) setResume(path string) Reply {
	path = strings.Trim(strings.TrimSpace(path), `"'`)
	if path == "" {
		return errorReply("resume path is empty")
	}
	s.mu.Lock()
	s.resumePath = path
	s.mu.Unlock()
	return Reply{Kind: KindInfo, Text: fmt.Sprintf("Resume set to `%s`. It will be tailored for the next search.", path)}
}

func (s *Session) showReferrals() Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Reply{Kind: KindTable, Text: RenderReferrals(s.referrals)}
}

func (s *Session) search(ctx context.Context, text string, emit func(Reply)) {
	c, err := criteria.Parse(text)
	if err != nil {
		emit(errorReply(err.Error()))
		return
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		emit(errorReply("A search is already running. Please wait for it to finish."))
		return
	}
	s.busy = true
	c.MaxJobs = s.maxJobs
	state := &crew.State{Criteria: c, ResumePath: s.resumePath}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	emit(Reply{Kind: KindInfo, Text: describe(c)})
	s.logger.Info("chat search", "keywords", c.Keywords, "location", c.Location, "experience", c.Experience)

	runErr := s.runner.Run(ctx, state, func(ev crew.Event) {
		if r, ok := progressReply(ev); ok {
			emit(r)
		}
	})

	s.mu.Lock()
	jobs := state.Jobs
	if s.sorted {
		jobs = SortJobs(jobs, s.sortField, s.sortDesc)
	}
	// A failed run keeps the previous results unless it found new jobs.
	if runErr == nil || len(jobs) > 0 {
		s.jobs, s.referrals, s.page = jobs, state.Referrals, 1
	}
	perPage := s.perPage
	s.mu.Unlock()

	if runErr != nil {
		s.logger.Error("chat search failed", "error", runErr)
		emit(s.errorFor(runErr))
	}
	if runErr == nil && len(jobs) == 0 {
		emit(Reply{Kind: KindInfo, Text: "No jobs found. Try broader keywords or a different location."})
		return
	}
	if len(jobs) > 0 {
		emit(Reply{Kind: KindTable, Text: RenderTable(jobs, 1, perPage)})
	}
	if n := model.CountContacts(state.Referrals); n > 0 {
		emit(Reply{Kind: KindInfo, Text: fmt.Sprintf("Found %d referral contacts. Send `referrals` to list them.", n)})
	}
}

func (s *Session) errorFor(err error) Reply {
	text := "Something went wrong: " + err.Error()
	if s.debug {
		text += "\n\n```\n" + errorChain(err) + "\n```"
	}
	return errorReply(text)
}

// errorChain lists each wrapped layer of err, outermost first.
func errorChain(err error) string {
	var lines []string
	for i := 0; err != nil; i++ {
		lines = append(lines, fmt.Sprintf("%d: %T: %v", i, err, err))
		err = errors.Unwrap(err)
	}
	return strings.Join(lines, "\n")
}

func progressReply(ev crew.Event) (Reply, bool) {
	prefix := fmt.Sprintf("[%d/%d] %s", ev.Step, ev.Total, ev.Role)
	switch ev.Status {
	case crew.StatusRunning:
		return Reply{Kind: KindProgress, Text: prefix + ": " + ev.Message + "..."}, true
	case crew.StatusDone:
		return Reply{Kind: KindProgress, Text: prefix + ": " + ev.Message}, true
	case crew.StatusSkipped:
		return Reply{Kind: KindProgress, Text: prefix + " " + ev.Message}, true
	}
	return Reply{}, false
}

func describe(c model.SearchCriteria) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Searching LinkedIn for **%s**", c.Keywords)
	if c.Location != "" {
		fmt.Fprintf(&b, " in **%s**", c.Location)
	}
	if c.Experience != "" {
		fmt.Fprintf(&b, " (%s level)", c.Experience)
	}
	b.WriteString(".")
	return b.String()
}

func errorReply(text string) Reply {
	return Reply{Kind: KindError, Text: text}
}

func helpText() string {
	return "Commands:\n" +
		"- `<keywords>, <location>, <level>, ...` search for jobs (levels: internship, entry, associate, mid-senior, senior, executive)\n" +
		"- `jobs per page: N` set the page size\n" +
		"- `sort by FIELD [asc|desc]` sort results (fields: " + joinFields() + ")\n" +
		"- `page N`, `next`, `prev` move between pages\n" +
		"- `resume: PATH` set the resume to tailor\n" +
		"- `referrals` list referral contacts from the last search\n" +
		"- `help` show this message"
}

package model

import (
	"context"
	"time"
)

// Placeholders substituted when a listing card is missing a field.
const (
	UnknownTitle    = "Unknown Title"
	UnknownCompany  = "Unknown Company"
	UnknownLocation = "Unknown Location"
	UnknownPosted   = "Unknown"
)

// SourceLinkedIn tags jobs scraped from LinkedIn.
const SourceLinkedIn = "linkedin"

// Job is a single listing scraped from a search results page.
type Job struct {
	ID           int64      // store-assigned, zero until saved
	ExternalID   string     // LinkedIn job posting id, may be empty
	Title        string     // job title
	Company      string     // company name
	Location     string     // location string
	Description  string     // full description when known
	Requirements string     // requirements section when known
	SalaryRange  string     // raw salary text, e.g. "$150K/yr - $190K/yr"
	URL          string     // canonical listing link (tracking params stripped)
	PostedText   string     // raw posted label, e.g. "2 days ago"
	PostedAt     *time.Time // nullable, from the card's <time datetime>
	Source       string     // scraper backend that produced the job
	CreatedAt    time.Time  // set by the store
}

// Key returns the identifier used for deduplication: the external id when
// known, otherwise the listing URL.
func (j Job) Key() string {
	if j.ExternalID != "" {
		return j.Source + ":" + j.ExternalID
	}
	return j.URL
}

// OptimizedResume is a resume rewritten for one job.
type OptimizedResume struct {
	ID            int64
	JobID         int64
	OriginalPath  string
	OptimizedPath string
	Notes         string
	CreatedAt     time.Time
}

// Referral is a network contact who may refer the user for a job.
type Referral struct {
	ID                 int64
	JobID              int64
	Name               string
	Title              string
	Company            string
	ConnectionLevel    int // 1 for 1st, 2 for 2nd, 0 when unknown or 3rd+
	ProfileURL         string
	IntroductionNeeded bool
	Notes              string
	CreatedAt          time.Time
}

// ContactKey identifies the person behind a referral, which repeats once per
// job at the same company.
func (r Referral) ContactKey() string {
	if r.ProfileURL != "" {
		return r.ProfileURL
	}
	return r.Name + "|" + r.Company
}

// CountContacts returns the number of distinct people in refs.
func CountContacts(refs []Referral) int {
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		seen[r.ContactKey()] = true
	}
	return len(seen)
}

// JobSearcher runs a search against a job site.
type JobSearcher interface {
	Search(ctx context.Context, criteria SearchCriteria) ([]Job, error)
}

// JobFilter decides whether a job matches the user's criteria.
type JobFilter interface {
	Match(job Job) bool
}

// Notifier sends notifications for new job matches.
type Notifier interface {
	Notify(jobs []Job) error
}

// JobStore tracks which job keys have been seen for deduplication.
type JobStore interface {
	HasSeen(key string) (bool, error)
	MarkSeen(key string) error
	Cleanup(olderThan time.Duration) error
	IsEmpty() (bool, error)
}

// Repository persists jobs and the artifacts produced for them.
type Repository interface {
	// SaveJobs upserts jobs and returns them with ID populated.
	SaveJobs(ctx context.Context, jobs []Job) ([]Job, error)
	ListJobs(ctx context.Context, limit int) ([]Job, error)
	SaveResume(ctx context.Context, r OptimizedResume) (OptimizedResume, error)
	ListResumes(ctx context.Context, jobID int64) ([]OptimizedResume, error)
	SaveReferrals(ctx context.Context, refs []Referral) ([]Referral, error)
	ListReferrals(ctx context.Context, jobID int64) ([]Referral, error)
}

// TailoredResume is the LLM's rewrite of a resume for one job.
type TailoredResume struct {
	Markdown   string   // full rewritten resume
	Changes    []string // short summary of what was changed
	MatchScore int      // 0-100 fit estimate, zero when unknown
}

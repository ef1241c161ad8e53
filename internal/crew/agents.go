package crew

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobhunter/internal/filter"
	"github.com/amishk599/jobhunter/internal/model"
)

// ResumeOptimizer tailors one resume for several jobs.
type ResumeOptimizer interface {
	OptimizeAll(ctx context.Context, resumePath string, jobs []model.Job) ([]model.OptimizedResume, error)
}

// ReferralFinder looks up network contacts at a company.
type ReferralFinder interface {
	FindPeople(ctx context.Context, company string, max int) ([]model.Referral, error)
}

// SearchAgent finds jobs matching the criteria and applies the configured
// keyword filter.
type SearchAgent struct {
	searcher model.JobSearcher
	filter   model.JobFilter
}

// NewSearchAgent creates a SearchAgent. A nil filter keeps every job.
func NewSearchAgent(searcher model.JobSearcher, f model.JobFilter) *SearchAgent {
	return &SearchAgent{searcher: searcher, filter: f}
}

// Role and Goal describe the agent in progress output.
func (a *SearchAgent) Role() string { return "Job Search Specialist" }
func (a *SearchAgent) Goal() string {
	return "Find relevant job postings on LinkedIn based on user criteria"
}

// Run searches with the state criteria and stores the matches in state.Jobs.
func (a *SearchAgent) Run(ctx context.Context, state *State) (string, error) {
	jobs, err := a.searcher.Search(ctx, state.Criteria)
	if err != nil {
		return "", err
	}
	found := len(jobs)
	if a.filter != nil {
		jobs = filter.Apply(a.filter, jobs)
	}
	state.Jobs = jobs

	msg := fmt.Sprintf("Found %d jobs for %q", len(jobs), state.Criteria.Keywords)
	if state.Criteria.Location != "" {
		msg += " in " + state.Criteria.Location
	}
	if dropped := found - len(jobs); dropped > 0 {
		msg += fmt.Sprintf(" (%d filtered out)", dropped)
	}
	return msg, nil
}

// DatabaseAgent stores the found jobs and records their IDs in state.
type DatabaseAgent struct {
	repo model.Repository
}

// NewDatabaseAgent creates a DatabaseAgent backed by repo.
func NewDatabaseAgent(repo model.Repository) *DatabaseAgent {
	return &DatabaseAgent{repo: repo}
}

// Role and Goal describe the agent in progress output.
func (a *DatabaseAgent) Role() string { return "Database Manager" }
func (a *DatabaseAgent) Goal() string { return "Store matched jobs in the database" }

// Run saves state.Jobs and replaces them with the stored copies.
func (a *DatabaseAgent) Run(ctx context.Context, state *State) (string, error) {
	if len(state.Jobs) == 0 {
		return "", skip("no jobs to store")
	}
	saved, err := a.repo.SaveJobs(ctx, state.Jobs)
	if err != nil {
		return "", err
	}
	state.Jobs = saved
	return fmt.Sprintf("Stored %d jobs", len(saved)), nil
}

// ResumeAgent tailors the user's resume for every found job.
type ResumeAgent struct {
	optimizer ResumeOptimizer
	repo      model.Repository
}

// NewResumeAgent creates a ResumeAgent that saves its records to repo.
func NewResumeAgent(optimizer ResumeOptimizer, repo model.Repository) *ResumeAgent {
	return &ResumeAgent{optimizer: optimizer, repo: repo}
}

// Role and Goal describe the agent in progress output.
func (a *ResumeAgent) Role() string { return "Resume Optimizer" }
func (a *ResumeAgent) Goal() string {
	return "Rewrite resumes to align with job listings and store them"
}

// Run tailors the resume at state.ResumePath for each job. It is skipped
// when no resume is set.
func (a *ResumeAgent) Run(ctx context.Context, state *State) (string, error) {
	if state.ResumePath == "" {
		return "", skip("no resume set (send `resume: PATH`)")
	}
	if len(state.Jobs) == 0 {
		return "", skip("no jobs to tailor for")
	}

	records, err := a.optimizer.OptimizeAll(ctx, state.ResumePath, state.Jobs)
	if err != nil {
		return "", err
	}
	for i, r := range records {
		if r.JobID == 0 {
			continue
		}
		saved, err := a.repo.SaveResume(ctx, r)
		if err != nil {
			return "", err
		}
		records[i] = saved
	}
	state.Resumes = records
	return fmt.Sprintf("Tailored %d resumes", len(records)), nil
}

// ReferralAgent searches the user's network for contacts at each company
// with an open job.
type ReferralAgent struct {
	finder     ReferralFinder
	repo       model.Repository
	perCompany int
	logger     *slog.Logger
}

// NewReferralAgent creates a ReferralAgent that collects up to perCompany
// contacts for each company.
func NewReferralAgent(finder ReferralFinder, repo model.Repository, perCompany int, logger *slog.Logger) *ReferralAgent {
	return &ReferralAgent{finder: finder, repo: repo, perCompany: perCompany, logger: logger}
}

// Role and Goal describe the agent in progress output.
func (a *ReferralAgent) Role() string { return "Referral Finder" }
func (a *ReferralAgent) Goal() string {
	return "Scan LinkedIn connections for referral opportunities"
}

// Run looks up contacts once per company and links them to every job there.
// It is skipped without a LinkedIn session.
func (a *ReferralAgent) Run(ctx context.Context, state *State) (string, error) {
	if a.finder == nil {
		return "", skip("referral lookup is disabled")
	}

	byCompany := make(map[string][]model.Job)
	var companies []string
	for _, j := range state.Jobs {
		if j.Company == "" || j.Company == model.UnknownCompany {
			continue
		}
		if _, ok := byCompany[j.Company]; !ok {
			companies = append(companies, j.Company)
		}
		byCompany[j.Company] = append(byCompany[j.Company], j)
	}
	if len(companies) == 0 {
		return "", skip("no companies to look up")
	}

	var found []model.Referral
	for _, company := range companies {
		people, err := a.finder.FindPeople(ctx, company, a.perCompany)
		if errors.Is(err, model.ErrNotAuthenticated) {
			return "", skip("no LinkedIn session (run `jobhunter login`)")
		}
		if err != nil {
			return "", fmt.Errorf("looking up contacts at %s: %w", company, err)
		}
		a.logger.Debug("contacts found", "company", company, "count", len(people))

		for _, job := range byCompany[company] {
			refs := make([]model.Referral, len(people))
			for i, p := range people {
				p.JobID = job.ID
				refs[i] = p
			}
			if job.ID != 0 && len(refs) > 0 {
				if refs, err = a.repo.SaveReferrals(ctx, refs); err != nil {
					return "", err
				}
			}
			found = append(found, refs...)
		}
	}
	state.Referrals = found
	return fmt.Sprintf("Found %d referral contacts across %d companies", model.CountContacts(found), len(companies)), nil
}

package crew

import (
	"log/slog"

	"github.com/amishk599/jobhunter/internal/model"
)

// Deps are the collaborators of the standard job hunter crew. Finder may be
// nil to disable referral lookup.
type Deps struct {
	Searcher            model.JobSearcher
	Filter              model.JobFilter
	Repo                model.Repository
	Optimizer           ResumeOptimizer
	Finder              ReferralFinder
	ReferralsPerCompany int
}

// NewJobHunterCrew builds the four-step crew: search, store, tailor resumes,
// find referrals.
func NewJobHunterCrew(d Deps, logger *slog.Logger) *Crew {
	return New(logger,
		Task{
			Label:          "search",
			Description:    "Search LinkedIn for jobs matching the criteria",
			ExpectedOutput: "List of job postings",
			Agent:          NewSearchAgent(d.Searcher, d.Filter),
		},
		Task{
			Label:          "store",
			Description:    "Store matched jobs in the database",
			ExpectedOutput: "Jobs stored in DB",
			Agent:          NewDatabaseAgent(d.Repo),
		},
		Task{
			Label:          "resume",
			Description:    "Rewrite the resume to align with each job and store it",
			ExpectedOutput: "Optimized resumes stored",
			Agent:          NewResumeAgent(d.Optimizer, d.Repo),
		},
		Task{
			Label:          "referrals",
			Description:    "Scan LinkedIn connections for referral opportunities",
			ExpectedOutput: "Referral candidates found",
			Agent:          NewReferralAgent(d.Finder, d.Repo, d.ReferralsPerCompany, logger),
		},
	)
}

package model

// ExperienceLevel is one of LinkedIn's seniority filters.
type ExperienceLevel string

const (
	ExperienceInternship ExperienceLevel = "internship"
	ExperienceEntry      ExperienceLevel = "entry"
	ExperienceAssociate  ExperienceLevel = "associate"
	ExperienceMidSenior  ExperienceLevel = "mid-senior"
	ExperienceSenior     ExperienceLevel = "senior"
	ExperienceExecutive  ExperienceLevel = "executive"
)

// ExperienceLevels lists the accepted levels in LinkedIn filter order.
var ExperienceLevels = []ExperienceLevel{
	ExperienceInternship,
	ExperienceEntry,
	ExperienceAssociate,
	ExperienceMidSenior,
	ExperienceSenior,
	ExperienceExecutive,
}

// FilterCode returns the LinkedIn f_E query value, or "" for an unknown level.
func (l ExperienceLevel) FilterCode() string {
	switch l {
	case ExperienceInternship:
		return "1"
	case ExperienceEntry:
		return "2"
	case ExperienceAssociate:
		return "3"
	case ExperienceMidSenior:
		return "4"
	case ExperienceSenior:
		return "5"
	case ExperienceExecutive:
		return "6"
	}
	return ""
}

// SearchCriteria describes one job search.
type SearchCriteria struct {
	Keywords   string
	Location   string
	Experience ExperienceLevel // empty = no experience filter
	Extra      []string        // trailing hints the search does not use (e.g. "Tech Company")
	MaxJobs    int             // <= 0 means the scraper default
}

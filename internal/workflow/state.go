package workflow

import "github.com/atliq/coldreach/internal/extract"

// State carries the working data between pipeline stages. Stages receive a
// State by value and return a new one; slices are re-allocated rather than
// mutated in place so a retried stage always starts from clean input.
type State struct {
	ScrapedText    string
	Jobs           []extract.JobPosting
	CoherenceScore float64
	RelevanceScore float64
	Emails         []string
}

// withJobs returns a copy of the state holding the given jobs.
func (s State) withJobs(jobs []extract.JobPosting) State {
	out := s
	out.Jobs = jobs
	return out
}

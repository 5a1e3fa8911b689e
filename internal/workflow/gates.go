package workflow

import (
	"strings"

	"github.com/atliq/coldreach/internal/extract"
)

// GateResult is the outcome of a quality gate: the jobs that survived the
// check, the fraction that did, and whether that fraction clears the
// configured threshold.
type GateResult struct {
	Jobs   []extract.JobPosting
	Score  float64
	Passed bool
}

// CoherenceGate checks that extracted postings are internally coherent: a
// posting must carry both a role and a description to be worth emailing
// about. The score is the surviving fraction of the input.
type CoherenceGate struct {
	Threshold float64
}

func (g CoherenceGate) Check(jobs []extract.JobPosting) GateResult {
	return gate(jobs, g.Threshold, func(j extract.JobPosting) bool {
		return strings.TrimSpace(j.Role) != "" && strings.TrimSpace(j.Description) != ""
	})
}

// RelevanceGate checks that retrieval produced usable portfolio evidence: a
// posting without any matched links cannot ground a credible email.
type RelevanceGate struct {
	Threshold float64
}

func (g RelevanceGate) Check(jobs []extract.JobPosting) GateResult {
	return gate(jobs, g.Threshold, func(j extract.JobPosting) bool {
		return len(j.Links) > 0
	})
}

// gate filters jobs by keep and scores the result. An empty input scores
// 0.0 and never passes, forcing the caller back to an earlier stage.
func gate(jobs []extract.JobPosting, threshold float64, keep func(extract.JobPosting) bool) GateResult {
	if len(jobs) == 0 {
		return GateResult{Score: 0.0}
	}

	kept := make([]extract.JobPosting, 0, len(jobs))
	for _, j := range jobs {
		if keep(j) {
			kept = append(kept, j)
		}
	}

	score := float64(len(kept)) / float64(len(jobs))
	return GateResult{
		Jobs:   kept,
		Score:  score,
		Passed: score >= threshold,
	}
}

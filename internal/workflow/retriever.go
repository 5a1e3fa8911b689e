package workflow

import (
	"context"
	"fmt"

	"github.com/atliq/coldreach/internal/extract"
)

// LinkQuerier answers skill-term queries with portfolio links. Satisfied by
// *portfolio.Index.
type LinkQuerier interface {
	Query(ctx context.Context, terms []string, k int) ([]string, error)
}

// LinkRetriever attaches portfolio links to job postings by querying the
// portfolio index with each job's skills.
type LinkRetriever struct {
	index    LinkQuerier
	perQuery int
}

// NewLinkRetriever creates a LinkRetriever returning up to perQuery links
// per skill term.
func NewLinkRetriever(index LinkQuerier, perQuery int) *LinkRetriever {
	return &LinkRetriever{index: index, perQuery: perQuery}
}

// Retrieve returns a copy of jobs with Links populated from the portfolio
// index. Jobs without skills get no links and the index is not queried for
// them. Links are overwritten, not appended, so a retried retrieval starts
// fresh.
func (r *LinkRetriever) Retrieve(ctx context.Context, jobs []extract.JobPosting) ([]extract.JobPosting, error) {
	out := make([]extract.JobPosting, len(jobs))
	for i, job := range jobs {
		out[i] = job
		if len(job.Skills) == 0 {
			out[i].Links = nil
			continue
		}
		links, err := r.index.Query(ctx, job.Skills, r.perQuery)
		if err != nil {
			return nil, fmt.Errorf("retrieving links for %q: %w", job.Role, err)
		}
		out[i].Links = links
	}
	return out, nil
}

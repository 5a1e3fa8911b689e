// Package compose drafts persona-voiced cold outreach emails for extracted
// job postings.
package compose

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/atliq/coldreach/internal/extract"
)

// Completer is the LLM completion interface. Satisfied by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Persona identifies who the emails are written as.
type Persona struct {
	Name        string
	Company     string
	CompanyInfo string
}

// Composer drafts one email per job posting.
type Composer struct {
	llm         Completer
	persona     Persona
	concurrency int
}

// New creates a Composer. concurrency bounds how many drafts run at once;
// values below 1 mean sequential.
func New(llm Completer, persona Persona, concurrency int) *Composer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Composer{llm: llm, persona: persona, concurrency: concurrency}
}

// Compose drafts an email for every job. Drafts are isolated: one job's
// failure never blocks the others, and every job runs to completion before
// errors are reported. The returned emails align with the input order,
// emails[i] belonging to jobs[i]. If any draft failed, all failures are
// joined into a single error and no emails are returned.
func (c *Composer) Compose(ctx context.Context, jobs []extract.JobPosting) ([]string, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	emails := make([]string, len(jobs))
	failures := make([]error, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			prompt, err := buildEmailPrompt(c.persona, job)
			if err != nil {
				failures[i] = fmt.Errorf("job %d (%s): %w", i, job.Role, err)
				return nil
			}
			email, err := c.llm.Complete(gCtx, prompt)
			if err != nil {
				failures[i] = fmt.Errorf("job %d (%s): %w", i, job.Role, err)
				return nil
			}
			emails[i] = email
			return nil
		})
	}
	g.Wait()

	if err := errors.Join(failures...); err != nil {
		return nil, fmt.Errorf("composing emails: %w", err)
	}
	return emails, nil
}

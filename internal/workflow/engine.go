// Package workflow orchestrates the outreach pipeline: extract job postings,
// gate them for coherence, retrieve portfolio links, gate those for
// relevance, and compose emails. A failed coherence gate loops back to
// extraction and a failed relevance gate loops back to retrieval, each
// bounded by its own attempt budget.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atliq/coldreach/internal/extract"
)

// ErrNotConverged is returned when a quality gate keeps failing after the
// configured number of attempts.
var ErrNotConverged = errors.New("workflow did not converge within attempt budget")

// step identifies a pipeline stage.
type step int

const (
	stepExtracting step = iota
	stepCheckingCoherence
	stepRetrievingLinks
	stepCheckingRelevance
	stepComposing
	stepDone
)

func (s step) String() string {
	switch s {
	case stepExtracting:
		return "extracting"
	case stepCheckingCoherence:
		return "checking_coherence"
	case stepRetrievingLinks:
		return "retrieving_links"
	case stepCheckingRelevance:
		return "checking_relevance"
	case stepComposing:
		return "composing"
	case stepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// JobExtractor extracts job postings from scraped text. Satisfied by
// *extract.Extractor.
type JobExtractor interface {
	Extract(ctx context.Context, text string) ([]extract.JobPosting, error)
}

// LinkAttacher populates job postings with portfolio links. Satisfied by
// *LinkRetriever.
type LinkAttacher interface {
	Retrieve(ctx context.Context, jobs []extract.JobPosting) ([]extract.JobPosting, error)
}

// EmailComposer drafts one email per job. Satisfied by *compose.Composer.
type EmailComposer interface {
	Compose(ctx context.Context, jobs []extract.JobPosting) ([]string, error)
}

// Result is the final output of a workflow run. Emails[i] corresponds to
// Jobs[i].
type Result struct {
	Jobs           []extract.JobPosting `json:"jobs"`
	Emails         []string             `json:"emails"`
	CoherenceScore float64              `json:"coherence_score"`
	RelevanceScore float64              `json:"rag_score"`
}

// Engine runs the outreach pipeline.
type Engine struct {
	extractor   JobExtractor
	coherence   CoherenceGate
	retriever   LinkAttacher
	relevance   RelevanceGate
	composer    EmailComposer
	maxAttempts int
}

// NewEngine wires a pipeline. maxAttempts bounds each gate separately;
// values below 1 mean a single attempt.
func NewEngine(extractor JobExtractor, coherence CoherenceGate, retriever LinkAttacher, relevance RelevanceGate, composer EmailComposer, maxAttempts int) *Engine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Engine{
		extractor:   extractor,
		coherence:   coherence,
		retriever:   retriever,
		relevance:   relevance,
		composer:    composer,
		maxAttempts: maxAttempts,
	}
}

// Run executes the pipeline over the scraped text. Empty input
// short-circuits to an empty Result: there is nothing to extract, and
// looping a gate over nothing would never converge.
//
// A coherence failure re-extracts from the original scraped text; a
// relevance failure re-runs retrieval. Each gate tracks its own attempt
// count; exhausting either budget aborts with an error wrapping
// ErrNotConverged.
func (e *Engine) Run(ctx context.Context, scrapedText string) (Result, error) {
	if strings.TrimSpace(scrapedText) == "" {
		slog.Info("workflow skipped, empty input")
		return Result{}, nil
	}

	state := State{ScrapedText: scrapedText}
	current := stepExtracting
	coherenceAttempts := 0
	relevanceAttempts := 0

	for current != stepDone {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		slog.Debug("workflow step", "step", current)

		switch current {
		case stepExtracting:
			jobs, err := e.extractor.Extract(ctx, state.ScrapedText)
			if err != nil {
				return Result{}, fmt.Errorf("extracting jobs: %w", err)
			}
			state = state.withJobs(jobs)
			current = stepCheckingCoherence

		case stepCheckingCoherence:
			coherenceAttempts++
			res := e.coherence.Check(state.Jobs)
			state.CoherenceScore = res.Score
			slog.Info("coherence gate", "score", res.Score, "passed", res.Passed, "attempt", coherenceAttempts, "jobs", len(res.Jobs))
			if !res.Passed {
				if coherenceAttempts >= e.maxAttempts {
					return Result{}, fmt.Errorf("coherence gate failed after %d attempts (score %.2f): %w", coherenceAttempts, res.Score, ErrNotConverged)
				}
				current = stepExtracting
				continue
			}
			state = state.withJobs(res.Jobs)
			current = stepRetrievingLinks

		case stepRetrievingLinks:
			jobs, err := e.retriever.Retrieve(ctx, state.Jobs)
			if err != nil {
				return Result{}, fmt.Errorf("retrieving links: %w", err)
			}
			state = state.withJobs(jobs)
			current = stepCheckingRelevance

		case stepCheckingRelevance:
			relevanceAttempts++
			res := e.relevance.Check(state.Jobs)
			state.RelevanceScore = res.Score
			slog.Info("relevance gate", "score", res.Score, "passed", res.Passed, "attempt", relevanceAttempts, "jobs", len(res.Jobs))
			if !res.Passed {
				if relevanceAttempts >= e.maxAttempts {
					return Result{}, fmt.Errorf("relevance gate failed after %d attempts (score %.2f): %w", relevanceAttempts, res.Score, ErrNotConverged)
				}
				current = stepRetrievingLinks
				continue
			}
			state = state.withJobs(res.Jobs)
			current = stepComposing

		case stepComposing:
			emails, err := e.composer.Compose(ctx, state.Jobs)
			if err != nil {
				return Result{}, fmt.Errorf("composing emails: %w", err)
			}
			state.Emails = emails
			current = stepDone
		}
	}

	slog.Info("workflow done", "jobs", len(state.Jobs), "emails", len(state.Emails))
	return Result{
		Jobs:           state.Jobs,
		Emails:         state.Emails,
		CoherenceScore: state.CoherenceScore,
		RelevanceScore: state.RelevanceScore,
	}, nil
}

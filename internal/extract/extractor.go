// Package extract turns cleaned career-page text into structured job
// postings via an LLM completion.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Completer is the LLM completion interface. Satisfied by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// JobPosting is one structured job extracted from page text.
type JobPosting struct {
	Role        string   `json:"role"`
	Experience  string   `json:"experience"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
	Links       []string `json:"links,omitempty"`
}

// Valid reports whether the posting carries the minimum identifying fields.
// Postings without a role or experience level are discarded rather than
// passed downstream.
func (j JobPosting) Valid() bool {
	return strings.TrimSpace(j.Role) != "" && strings.TrimSpace(j.Experience) != ""
}

// Extractor asks an LLM to pull job postings out of scraped text.
type Extractor struct {
	llm Completer
}

// NewExtractor creates an Extractor over the given completer.
func NewExtractor(llm Completer) *Extractor {
	return &Extractor{llm: llm}
}

// Extract sends the scraped text through the extraction prompt and parses
// the response into job postings. Malformed or incomplete objects in the
// response are dropped; an entirely unparsable response yields an empty
// slice with no error so the caller's retry logic decides what happens
// next. Transport failures are returned as errors.
func (e *Extractor) Extract(ctx context.Context, text string) ([]JobPosting, error) {
	resp, err := e.llm.Complete(ctx, buildExtractionPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("extraction completion: %w", err)
	}

	jobs := parsePostings(resp)
	if jobs == nil {
		slog.Warn("extraction response not parsable as job postings", "response", truncate(resp, 200))
		return []JobPosting{}, nil
	}
	return jobs, nil
}

// parsePostings robustly extracts job postings from an LLM response. Models
// frequently wrap JSON in markdown code fences or prepend conversational
// filler. The parser:
//  1. Strips markdown code fences if present (```json ... ```)
//  2. Slices from the first [ or { to the matching last ] or }
//  3. Parses an array when [ opens the payload, otherwise a single object
//  4. Drops elements that fail to unmarshal or lack required fields
//
// Returns nil when nothing parsable is found.
func parsePostings(resp string) []JobPosting {
	s := strings.TrimSpace(resp)

	// Strip markdown code fences.
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	// Decide the shape by whichever delimiter opens the payload: a single
	// object may hold array-valued fields (skills, links), so the array
	// branch only applies when [ comes before {.
	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if raw := sliceDelimited(s, '[', ']'); raw != "" {
			var elems []json.RawMessage
			if err := json.Unmarshal([]byte(raw), &elems); err == nil {
				jobs := make([]JobPosting, 0, len(elems))
				for _, elem := range elems {
					var j JobPosting
					if err := json.Unmarshal(elem, &j); err != nil || !j.Valid() {
						continue
					}
					jobs = append(jobs, j)
				}
				return jobs
			}
		}
	}

	if raw := sliceDelimited(s, '{', '}'); raw != "" {
		var j JobPosting
		if err := json.Unmarshal([]byte(raw), &j); err == nil && j.Valid() {
			return []JobPosting{j}
		}
	}

	return nil
}

// sliceDelimited returns the substring from the first open delimiter to the
// last close delimiter, or "" if the pair is absent or inverted.
func sliceDelimited(s string, open, closing byte) string {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closing)
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

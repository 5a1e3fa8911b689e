package compose

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/atliq/coldreach/internal/extract"
)

var testPersona = Persona{
	Name:        "Mohan",
	Company:     "AtliQ",
	CompanyInfo: "an AI & Software Consulting company dedicated to facilitating the seamless integration of business processes through automated tools.",
}

// fakeCompleter echoes back an email tagged with the job role found in the
// prompt, or fails for roles in failRoles.
type fakeCompleter struct {
	mu        sync.Mutex
	prompts   []string
	failRoles []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	for _, role := range f.failRoles {
		if strings.Contains(prompt, role) {
			return "", errors.New("model overloaded")
		}
	}
	return "email for prompt: " + prompt[:40], nil
}

func testJobs() []extract.JobPosting {
	return []extract.JobPosting{
		{Role: "ML Engineer", Experience: "5 years", Skills: []string{"Python"}, Description: "Build pipelines.", Links: []string{"https://example.com/ml"}},
		{Role: "Frontend Developer", Experience: "2 years", Skills: []string{"React"}, Description: "Ship UI.", Links: []string{"https://example.com/react"}},
	}
}

func TestComposeOnePerJob(t *testing.T) {
	llm := &fakeCompleter{}
	c := New(llm, testPersona, 2)

	emails, err := c.Compose(context.Background(), testJobs())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(emails))
	}
	for i, email := range emails {
		if email == "" {
			t.Errorf("email %d is empty", i)
		}
	}
}

func TestComposePromptContents(t *testing.T) {
	llm := &fakeCompleter{}
	c := New(llm, testPersona, 1)

	jobs := testJobs()[:1]
	if _, err := c.Compose(context.Background(), jobs); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	for _, want := range []string{"ML Engineer", "Mohan", "AtliQ", "https://example.com/ml", "NO PREAMBLE"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComposeNoLinksOmitsPortfolioSection(t *testing.T) {
	llm := &fakeCompleter{}
	c := New(llm, testPersona, 1)

	job := extract.JobPosting{Role: "DevOps", Experience: "3 years", Description: "Run infra."}
	if _, err := c.Compose(context.Background(), []extract.JobPosting{job}); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if strings.Contains(llm.prompts[0], "portfolio:") {
		t.Error("portfolio section present despite no links")
	}
}

func TestComposeEmptyJobs(t *testing.T) {
	llm := &fakeCompleter{}
	c := New(llm, testPersona, 2)

	emails, err := c.Compose(context.Background(), nil)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if emails != nil {
		t.Errorf("expected nil emails, got %v", emails)
	}
	if len(llm.prompts) != 0 {
		t.Error("completer called for empty job list")
	}
}

func TestComposeOneFailureFailsStageButRunsAll(t *testing.T) {
	llm := &fakeCompleter{failRoles: []string{"ML Engineer"}}
	c := New(llm, testPersona, 1)

	emails, err := c.Compose(context.Background(), testJobs())
	if err == nil {
		t.Fatal("expected error when a draft fails")
	}
	if emails != nil {
		t.Errorf("expected no emails on failure, got %v", emails)
	}
	// The failing job must not stop the other draft from running.
	if len(llm.prompts) != 2 {
		t.Errorf("expected 2 completer calls, got %d", len(llm.prompts))
	}
	if !strings.Contains(err.Error(), "ML Engineer") {
		t.Errorf("error does not name the failing job: %v", err)
	}
}

func TestComposeOrderPreserved(t *testing.T) {
	llm := &fakeCompleter{}
	c := New(llm, testPersona, 4)

	jobs := []extract.JobPosting{
		{Role: "AAA Engineer", Experience: "1 year", Description: "a"},
		{Role: "BBB Engineer", Experience: "2 years", Description: "b"},
		{Role: "CCC Engineer", Experience: "3 years", Description: "c"},
	}
	emails, err := c.Compose(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(emails) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(emails))
	}
	for i, role := range []string{"AAA", "BBB", "CCC"} {
		if !strings.Contains(emails[i], role) {
			t.Errorf("email %d does not correspond to job %q: %q", i, role, emails[i])
		}
	}
}

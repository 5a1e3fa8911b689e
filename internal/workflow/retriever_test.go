package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/atliq/coldreach/internal/extract"
)

// fakeQuerier returns canned links keyed by the first term.
type fakeQuerier struct {
	links map[string][]string
	err   error
	calls int
	lastK int
}

func (f *fakeQuerier) Query(ctx context.Context, terms []string, k int) ([]string, error) {
	f.calls++
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.links[terms[0]], nil
}

func TestRetrieveAttachesLinks(t *testing.T) {
	q := &fakeQuerier{links: map[string][]string{
		"Python": {"https://example.com/ml"},
		"React":  {"https://example.com/react"},
	}}
	r := NewLinkRetriever(q, 2)

	jobs := []extract.JobPosting{
		{Role: "ML Engineer", Skills: []string{"Python", "TensorFlow"}},
		{Role: "Frontend Dev", Skills: []string{"React"}},
	}
	out, err := r.Retrieve(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(out))
	}
	if len(out[0].Links) != 1 || out[0].Links[0] != "https://example.com/ml" {
		t.Errorf("unexpected links for job 0: %v", out[0].Links)
	}
	if len(out[1].Links) != 1 || out[1].Links[0] != "https://example.com/react" {
		t.Errorf("unexpected links for job 1: %v", out[1].Links)
	}
	if q.lastK != 2 {
		t.Errorf("expected per-query k=2, got %d", q.lastK)
	}
	// Input must not be mutated.
	if jobs[0].Links != nil {
		t.Error("input jobs mutated")
	}
}

func TestRetrieveSkipsJobsWithoutSkills(t *testing.T) {
	q := &fakeQuerier{links: map[string][]string{}}
	r := NewLinkRetriever(q, 2)

	out, err := r.Retrieve(context.Background(), []extract.JobPosting{
		{Role: "Generalist"},
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if q.calls != 0 {
		t.Errorf("index queried for job without skills: %d calls", q.calls)
	}
	if out[0].Links != nil {
		t.Errorf("expected no links, got %v", out[0].Links)
	}
}

func TestRetrieveOverwritesStaleLinks(t *testing.T) {
	q := &fakeQuerier{links: map[string][]string{"Go": {"https://example.com/go"}}}
	r := NewLinkRetriever(q, 2)

	out, err := r.Retrieve(context.Background(), []extract.JobPosting{
		{Role: "Backend", Skills: []string{"Go"}, Links: []string{"https://example.com/stale"}},
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out[0].Links) != 1 || out[0].Links[0] != "https://example.com/go" {
		t.Errorf("stale links not overwritten: %v", out[0].Links)
	}
}

func TestRetrievePropagatesError(t *testing.T) {
	q := &fakeQuerier{err: errors.New("embedding server down")}
	r := NewLinkRetriever(q, 2)

	_, err := r.Retrieve(context.Background(), []extract.JobPosting{
		{Role: "Backend", Skills: []string{"Go"}},
	})
	if err == nil {
		t.Error("expected error from failing index")
	}
}

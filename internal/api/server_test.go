package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atliq/coldreach/internal/extract"
	"github.com/atliq/coldreach/internal/portfolio"
	"github.com/atliq/coldreach/internal/storage"
	"github.com/atliq/coldreach/internal/workflow"
)

// --- mocks ---

type mockRunner struct {
	result   workflow.Result
	err      error
	lastText string
}

func (m *mockRunner) Run(_ context.Context, text string) (workflow.Result, error) {
	m.lastText = text
	return m.result, m.err
}

type mockFetcher struct {
	text string
	err  error
	urls []string
}

func (m *mockFetcher) FetchAndClean(_ context.Context, url string) (string, error) {
	m.urls = append(m.urls, url)
	return m.text, m.err
}

type mockEmbedClient struct{}

func (mockEmbedClient) Embed(_ context.Context, _ string, text string) ([]float32, error) {
	// Cheap deterministic vector so inserts and searches work.
	v := []float32{0, 0, 1}
	if strings.Contains(text, "React") {
		v = []float32{1, 0, 0}
	}
	return v, nil
}

// --- helpers ---

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	idx := portfolio.NewIndex(
		portfolio.NewEmbedder(mockEmbedClient{}, "test-model"),
		portfolio.NewSQLiteVectorStore(store.DB()),
	)

	return Deps{
		Engine:  &mockRunner{},
		Fetcher: &mockFetcher{},
		Index:   idx,
		Store:   store,
	}
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestHealth(t *testing.T) {
	h := NewHandler(newTestDeps(t))
	rec := doRequest(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGenerateWithText(t *testing.T) {
	deps := newTestDeps(t)
	runner := &mockRunner{result: workflow.Result{
		Jobs:           []extract.JobPosting{{Role: "ML Engineer", Experience: "5y"}},
		Emails:         []string{"Dear team..."},
		CoherenceScore: 1.0,
		RelevanceScore: 1.0,
	}}
	deps.Engine = runner
	h := NewHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/generate", `{"text": "scraped careers page"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if runner.lastText != "scraped careers page" {
		t.Errorf("engine got text %q", runner.lastText)
	}

	var result workflow.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.Emails) != 1 || result.Emails[0] != "Dear team..." {
		t.Errorf("unexpected emails %v", result.Emails)
	}
	if result.CoherenceScore != 1.0 {
		t.Errorf("coherence score = %v", result.CoherenceScore)
	}
}

func TestGenerateWithURL(t *testing.T) {
	deps := newTestDeps(t)
	fetcher := &mockFetcher{text: "fetched page text"}
	runner := &mockRunner{}
	deps.Fetcher = fetcher
	deps.Engine = runner
	h := NewHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/generate", `{"url": "https://example.com/careers"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://example.com/careers" {
		t.Errorf("fetcher called with %v", fetcher.urls)
	}
	if runner.lastText != "fetched page text" {
		t.Errorf("engine got text %q", runner.lastText)
	}
}

func TestGenerateValidation(t *testing.T) {
	h := NewHandler(newTestDeps(t))

	tests := []struct {
		name string
		body string
	}{
		{"neither url nor text", `{}`},
		{"both url and text", `{"url": "https://x.com", "text": "y"}`},
		{"malformed json", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/generate", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGenerateFetchFailure(t *testing.T) {
	deps := newTestDeps(t)
	deps.Fetcher = &mockFetcher{err: errors.New("connection refused")}
	h := NewHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/generate", `{"url": "https://example.com/careers"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestGenerateNotConverged(t *testing.T) {
	deps := newTestDeps(t)
	deps.Engine = &mockRunner{err: fmt.Errorf("coherence gate failed: %w", workflow.ErrNotConverged)}
	h := NewHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/generate", `{"text": "some page"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestGenerateEngineFailure(t *testing.T) {
	deps := newTestDeps(t)
	deps.Engine = &mockRunner{err: errors.New("groq down")}
	h := NewHandler(deps)

	rec := doRequest(t, h, http.MethodPost, "/generate", `{"text": "some page"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestPortfolioAddAndList(t *testing.T) {
	h := NewHandler(newTestDeps(t))

	rec := doRequest(t, h, http.MethodPost, "/portfolio", `{"descriptor": "React, Node.js", "link": "https://example.com/react"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/portfolio", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var entries []map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["link"] != "https://example.com/react" {
		t.Errorf("unexpected link %q", entries[0]["link"])
	}
}

func TestPortfolioAddValidation(t *testing.T) {
	h := NewHandler(newTestDeps(t))

	rec := doRequest(t, h, http.MethodPost, "/portfolio", `{"descriptor": "", "link": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPortfolioListEmpty(t *testing.T) {
	h := NewHandler(newTestDeps(t))

	rec := doRequest(t, h, http.MethodGet, "/portfolio", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

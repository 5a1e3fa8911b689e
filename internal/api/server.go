// Package api exposes the outreach pipeline over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atliq/coldreach/internal/extract"
	"github.com/atliq/coldreach/internal/portfolio"
	"github.com/atliq/coldreach/internal/storage"
	"github.com/atliq/coldreach/internal/workflow"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Runner executes the outreach pipeline. Satisfied by *workflow.Engine.
type Runner interface {
	Run(ctx context.Context, scrapedText string) (workflow.Result, error)
}

// PageFetcher downloads and cleans a career page. Satisfied by
// *scrape.Fetcher.
type PageFetcher interface {
	FetchAndClean(ctx context.Context, url string) (string, error)
}

// Deps holds everything the HTTP handlers need.
type Deps struct {
	Engine  Runner
	Fetcher PageFetcher
	Index   *portfolio.Index
	Store   *storage.Store
}

// NewHandler returns the HTTP handler for the coldreach API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/generate", handleGenerate(deps))
	r.Get("/portfolio", handleListPortfolio(deps))
	r.Post("/portfolio", handleAddPortfolio(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GenerateRequest asks for outreach emails from either a career page URL or
// pre-scraped text.
type GenerateRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

func handleGenerate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.URL == "" && req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "one of url or text is required")
			return
		}
		if req.URL != "" && req.Text != "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "url and text are mutually exclusive")
			return
		}

		text := req.Text
		if req.URL != "" {
			fetched, err := deps.Fetcher.FetchAndClean(r.Context(), req.URL)
			if err != nil {
				httpError(w, http.StatusBadGateway, "api_error", "failed to fetch url: %v", err)
				return
			}
			text = fetched
		}

		result, err := deps.Engine.Run(r.Context(), text)
		if errors.Is(err, workflow.ErrNotConverged) {
			httpError(w, http.StatusUnprocessableEntity, "not_converged", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "pipeline failed: %v", err)
			return
		}

		if result.Jobs == nil {
			result.Jobs = []extract.JobPosting{}
		}
		if result.Emails == nil {
			result.Emails = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func handleListPortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 50, 500)

		entries, err := deps.Store.ListPortfolioEntries(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list portfolio: %v", err)
			return
		}
		if entries == nil {
			entries = []storage.PortfolioEntry{}
		}

		out := make([]map[string]string, len(entries))
		for i, e := range entries {
			out[i] = map[string]string{
				"id":         e.ID,
				"descriptor": e.Descriptor,
				"link":       e.Link,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

// AddPortfolioRequest adds one portfolio entry to the index.
type AddPortfolioRequest struct {
	Descriptor string `json:"descriptor"`
	Link       string `json:"link"`
}

func handleAddPortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req AddPortfolioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Descriptor == "" || req.Link == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "descriptor and link are required")
			return
		}

		if err := deps.Index.Add(r.Context(), portfolio.Entry{Descriptor: req.Descriptor, Link: req.Link}); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to add entry: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "added"})
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/atliq/coldreach/internal/portfolio"
	"github.com/atliq/coldreach/internal/storage"
	"github.com/atliq/coldreach/internal/workflow"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Engine  Runner
	Fetcher PageFetcher
	Index   *portfolio.Index
	Store   *storage.Store
}

// NewMCPServer creates an MCP server exposing the outreach pipeline and the
// portfolio catalog as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"coldreach",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("coldreach extracts job postings from career pages and drafts cold outreach emails backed by a portfolio catalog."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("generate_outreach",
			mcp.WithDescription("Extract job postings from a career page and draft a cold outreach email per posting."),
			mcp.WithString("url", mcp.Description("Career page URL to scrape")),
			mcp.WithString("text", mcp.Description("Pre-scraped page text, alternative to url")),
		),
		mcpGenerateOutreach(deps),
	)

	s.AddTool(
		mcp.NewTool("query_portfolio",
			mcp.WithDescription("Find portfolio links matching a list of skills."),
			mcp.WithArray("skills", mcp.Description("Skill terms to match against the portfolio"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum links per skill (default 2)")),
		),
		mcpQueryPortfolio(deps),
	)

	s.AddTool(
		mcp.NewTool("add_portfolio_entry",
			mcp.WithDescription("Add one entry to the portfolio catalog."),
			mcp.WithString("descriptor", mcp.Description("Tech-stack descriptor, e.g. \"React, Node.js, MongoDB\""), mcp.Required()),
			mcp.WithString("link", mcp.Description("Portfolio URL demonstrating that stack"), mcp.Required()),
		),
		mcpAddPortfolioEntry(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"portfolio://entries",
			"Portfolio Entries",
			mcp.WithResourceDescription("All portfolio catalog entries as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceEntries(deps),
	)

	return s
}

func mcpGenerateOutreach(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url := req.GetString("url", "")
		text := req.GetString("text", "")

		if url == "" && text == "" {
			return mcpError("one of url or text is required"), nil
		}
		if url != "" && text != "" {
			return mcpError("url and text are mutually exclusive"), nil
		}

		if url != "" {
			fetched, err := deps.Fetcher.FetchAndClean(ctx, url)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to fetch url: %v", err)), nil
			}
			text = fetched
		}

		result, err := deps.Engine.Run(ctx, text)
		if errors.Is(err, workflow.ErrNotConverged) {
			return mcpError(fmt.Sprintf("pipeline did not converge: %v", err)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("pipeline failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpQueryPortfolio(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skills := req.GetStringSlice("skills", nil)
		if len(skills) == 0 {
			return mcpError("skills is required"), nil
		}

		limit := req.GetInt("limit", 2)
		if limit <= 0 {
			limit = 2
		}
		if limit > 20 {
			limit = 20
		}

		links, err := deps.Index.Query(ctx, skills, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("query failed: %v", err)), nil
		}
		if links == nil {
			links = []string{}
		}

		b, err := json.Marshal(links)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal links: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddPortfolioEntry(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		descriptor, err := req.RequireString("descriptor")
		if err != nil {
			return mcpError("descriptor is required"), nil
		}
		link, err := req.RequireString("link")
		if err != nil {
			return mcpError("link is required"), nil
		}

		if err := deps.Index.Add(ctx, portfolio.Entry{Descriptor: descriptor, Link: link}); err != nil {
			return mcpError(fmt.Sprintf("failed to add entry: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Added portfolio entry for %q", descriptor)), nil
	}
}

func mcpResourceEntries(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		entries, err := deps.Store.ListPortfolioEntries(0)
		if err != nil {
			return nil, fmt.Errorf("failed to list portfolio entries: %w", err)
		}

		type entryView struct {
			ID         string `json:"id"`
			Descriptor string `json:"descriptor"`
			Link       string `json:"link"`
			CreatedAt  string `json:"created_at"`
		}

		views := make([]entryView, len(entries))
		for i, e := range entries {
			views[i] = entryView{
				ID:         e.ID,
				Descriptor: e.Descriptor,
				Link:       e.Link,
				CreatedAt:  e.CreatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(views)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entries: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

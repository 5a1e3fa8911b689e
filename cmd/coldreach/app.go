package main

import (
	"context"
	"fmt"

	"github.com/atliq/coldreach/internal/compose"
	"github.com/atliq/coldreach/internal/config"
	"github.com/atliq/coldreach/internal/extract"
	"github.com/atliq/coldreach/internal/llm"
	"github.com/atliq/coldreach/internal/ollama"
	"github.com/atliq/coldreach/internal/portfolio"
	"github.com/atliq/coldreach/internal/scrape"
	"github.com/atliq/coldreach/internal/storage"
	"github.com/atliq/coldreach/internal/workflow"
)

const composeConcurrency = 4

// app wires the full pipeline from config. Commands share one builder so
// the CLI and the server run the exact same stack.
type app struct {
	cfg     config.Config
	store   *storage.Store
	index   *portfolio.Index
	engine  *workflow.Engine
	fetcher *scrape.Fetcher
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireGroqKey(); err != nil {
		return nil, err
	}

	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	if err := ollama.EnsureReady(ctx, ollamaClient, cfg.Ollama.EmbedModel); err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	embedder := portfolio.NewEmbedder(ollamaClient, cfg.Ollama.EmbedModel)
	vectorStore := portfolio.NewSQLiteVectorStore(store.DB())
	index := portfolio.NewIndex(embedder, vectorStore)

	llmClient := llm.NewClient(cfg.Groq.APIKey, cfg.Groq.Model)
	extractor := extract.NewExtractor(llmClient)
	retriever := workflow.NewLinkRetriever(index, cfg.Workflow.LinksPerQuery)
	composer := compose.New(llmClient, compose.Persona{
		Name:        cfg.Persona.Name,
		Company:     cfg.Persona.Company,
		CompanyInfo: cfg.Persona.CompanyInfo,
	}, composeConcurrency)

	engine := workflow.NewEngine(
		extractor,
		workflow.CoherenceGate{Threshold: cfg.Workflow.CoherenceThreshold},
		retriever,
		workflow.RelevanceGate{Threshold: cfg.Workflow.RAGThreshold},
		composer,
		cfg.Workflow.MaxAttempts,
	)

	return &app{
		cfg:     cfg,
		store:   store,
		index:   index,
		engine:  engine,
		fetcher: scrape.NewFetcher(),
	}, nil
}

// openStore opens storage without the rest of the stack, for commands that
// only read the catalog and don't need Ollama or Groq.
func openStore(cfg config.Config) (*storage.Store, error) {
	return storage.Open(cfg.Storage.DataDir)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		printWarning("closing storage: %v", err)
	}
}

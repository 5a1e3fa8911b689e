package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "COLDREACH_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "groq.api_key", typ: kString, env: "COLDREACH_GROQ_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Groq.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Groq.APIKey },
	},
	{
		key: "groq.model", typ: kString, env: "COLDREACH_GROQ_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Groq.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Groq.Model },
	},
	{
		key: "ollama.base_url", typ: kString, env: "COLDREACH_OLLAMA_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.BaseURL },
	},
	{
		key: "ollama.embed_model", typ: kString, env: "COLDREACH_OLLAMA_EMBED_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Ollama.EmbedModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Ollama.EmbedModel },
	},
	{
		key: "storage.data_dir", typ: kString, env: "COLDREACH_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "workflow.coherence_threshold", typ: kFloat, env: "COLDREACH_WORKFLOW_COHERENCE_THRESHOLD",
		apply:   func(cfg *Config, v any) { cfg.Workflow.CoherenceThreshold = v.(float64) },
		extract: func(cfg Config) any { return cfg.Workflow.CoherenceThreshold },
	},
	{
		key: "workflow.rag_threshold", typ: kFloat, env: "COLDREACH_WORKFLOW_RAG_THRESHOLD",
		apply:   func(cfg *Config, v any) { cfg.Workflow.RAGThreshold = v.(float64) },
		extract: func(cfg Config) any { return cfg.Workflow.RAGThreshold },
	},
	{
		key: "workflow.links_per_query", typ: kInt, env: "COLDREACH_WORKFLOW_LINKS_PER_QUERY",
		apply:   func(cfg *Config, v any) { cfg.Workflow.LinksPerQuery = v.(int) },
		extract: func(cfg Config) any { return cfg.Workflow.LinksPerQuery },
	},
	{
		key: "workflow.max_attempts", typ: kInt, env: "COLDREACH_WORKFLOW_MAX_ATTEMPTS",
		apply:   func(cfg *Config, v any) { cfg.Workflow.MaxAttempts = v.(int) },
		extract: func(cfg Config) any { return cfg.Workflow.MaxAttempts },
	},
	{
		key: "persona.name", typ: kString, env: "COLDREACH_PERSONA_NAME",
		apply:   func(cfg *Config, v any) { cfg.Persona.Name = v.(string) },
		extract: func(cfg Config) any { return cfg.Persona.Name },
	},
	{
		key: "persona.company", typ: kString, env: "COLDREACH_PERSONA_COMPANY",
		apply:   func(cfg *Config, v any) { cfg.Persona.Company = v.(string) },
		extract: func(cfg Config) any { return cfg.Persona.Company },
	},
	{
		key: "persona.company_info", typ: kString, env: "COLDREACH_PERSONA_COMPANY_INFO",
		apply:   func(cfg *Config, v any) { cfg.Persona.CompanyInfo = v.(string) },
		extract: func(cfg Config) any { return cfg.Persona.CompanyInfo },
	},
	{
		key: "log.level", typ: kString, env: "COLDREACH_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}

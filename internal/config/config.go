package config

import (
	"fmt"
)

type Config struct {
	Server   ServerConfig
	Groq     GroqConfig
	Ollama   OllamaConfig
	Storage  StorageConfig
	Workflow WorkflowConfig
	Persona  PersonaConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

type GroqConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	BaseURL    string
	EmbedModel string
}

type StorageConfig struct {
	DataDir string
}

type WorkflowConfig struct {
	CoherenceThreshold float64
	RAGThreshold       float64
	LinksPerQuery      int
	MaxAttempts        int
}

type PersonaConfig struct {
	Name        string
	Company     string
	CompanyInfo string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4700,
		},
		Groq: GroqConfig{
			Model: "llama-3.3-70b-versatile",
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			EmbedModel: "nomic-embed-text",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Workflow: WorkflowConfig{
			CoherenceThreshold: 0.8,
			RAGThreshold:       0.8,
			LinksPerQuery:      2,
			MaxAttempts:        3,
		},
		Persona: PersonaConfig{
			Name:    "Mohan",
			Company: "AtliQ",
			CompanyInfo: "an AI & Software Consulting company dedicated to facilitating " +
				"the seamless integration of business processes through automated tools",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file
// ($XDG_CONFIG_HOME/coldreach/config.json) and applies COLDREACH_*
// environment variable overrides on top. The Groq API key is a secret:
// it is read only from the environment (COLDREACH_GROQ_API_KEY), never
// from the config file. A missing key is not an error here; commands
// that call Groq check it via RequireGroqKey.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// RequireGroqKey errors when no Groq API key is configured. Called by
// commands that actually talk to Groq, so read-only commands work without
// the key.
func (c Config) RequireGroqKey() error {
	if c.Groq.APIKey == "" {
		return fmt.Errorf("missing required config: Groq API key. " +
			"Set it via environment variable COLDREACH_GROQ_API_KEY")
	}
	return nil
}

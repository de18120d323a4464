// Package config loads ideaforge configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all ideaforge configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Research ResearchConfig `yaml:"research"`
	Fetchers FetchersConfig `yaml:"fetchers"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LLMConfig configures the reasoning engine.
type LLMConfig struct {
	Provider        string  `yaml:"provider"` // gemini
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	MaxConcurrent   int     `yaml:"max_concurrent"` // in-flight calls shared by all runs
}

// SearchConfig configures the web search collaborator.
type SearchConfig struct {
	Backend    string `yaml:"backend"` // duckduckgo
	BaseURL    string `yaml:"base_url"`
	MaxResults int    `yaml:"max_results"`
	CacheTTL   string `yaml:"cache_ttl"`
	CacheSize  int    `yaml:"cache_size"`
	UserAgent  string `yaml:"user_agent"`
}

// ResearchConfig bounds the tool-calling research loop.
type ResearchConfig struct {
	MaxIterations int `yaml:"max_iterations"`
	MinSearches   int `yaml:"min_searches"`
}

// FetcherConfig configures one auxiliary data source.
type FetcherConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	AppID   string `yaml:"app_id,omitempty"`
	Country string `yaml:"country,omitempty"`
	Series  string `yaml:"series,omitempty"`
}

// FetchersConfig groups the auxiliary data fetchers.
type FetchersConfig struct {
	Trends    FetcherConfig `yaml:"trends"`
	Jobs      FetcherConfig `yaml:"jobs"`
	Workforce FetcherConfig `yaml:"workforce"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StoreConfig configures report persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, console
	File       string          `yaml:"file"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "ideaforge",
		Version: "0.4.0",

		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-2.5-flash",
			Temperature:     0.4,
			MaxOutputTokens: 8192,
			MaxConcurrent:   6,
		},

		Search: SearchConfig{
			Backend:    "duckduckgo",
			BaseURL:    "https://html.duckduckgo.com/html/",
			MaxResults: 8,
			CacheTTL:   "30m",
			CacheSize:  500,
			UserAgent:  "Mozilla/5.0 (compatible; ideaforge/0.4)",
		},

		Research: ResearchConfig{
			MaxIterations: 12,
			MinSearches:   5,
		},

		Fetchers: FetchersConfig{
			Trends: FetcherConfig{
				Enabled: true,
				BaseURL: "https://serpapi.com",
			},
			Jobs: FetcherConfig{
				Enabled: true,
				BaseURL: "https://api.adzuna.com",
				Country: "us",
			},
			Workforce: FetcherConfig{
				Enabled: true,
				BaseURL: "https://api.bls.gov",
				Series:  "CES0000000001",
			},
		},

		Timeouts: DefaultTimeoutsConfig(),

		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},

		Store: StoreConfig{
			Path: "data/ideaforge.db",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults (with environment overrides).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// GEMINI_API_KEY wins over the generic Google key.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("IDEAFORGE_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if key := os.Getenv("SERPAPI_API_KEY"); key != "" {
		c.Fetchers.Trends.APIKey = key
	}
	if id := os.Getenv("ADZUNA_APP_ID"); id != "" {
		c.Fetchers.Jobs.AppID = id
	}
	if key := os.Getenv("ADZUNA_APP_KEY"); key != "" {
		c.Fetchers.Jobs.APIKey = key
	}
	if key := os.Getenv("BLS_API_KEY"); key != "" {
		c.Fetchers.Workforce.APIKey = key
	}

	if path := os.Getenv("IDEAFORGE_DB"); path != "" {
		c.Store.Path = path
	}
	if addr := os.Getenv("IDEAFORGE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}

// ValidProviders lists all supported reasoning engine providers.
var ValidProviders = []string{"gemini"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or GOOGLE_API_KEY)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if c.Research.MaxIterations <= 0 {
		return fmt.Errorf("research.max_iterations must be positive, got %d", c.Research.MaxIterations)
	}
	if _, err := c.Timeouts.Parse(); err != nil {
		return err
	}
	return nil
}

// TrendsUsable reports whether the trends fetcher can run.
func (c *Config) TrendsUsable() bool {
	return c.Fetchers.Trends.Enabled && c.Fetchers.Trends.APIKey != ""
}

// JobsUsable reports whether the jobs fetcher can run.
func (c *Config) JobsUsable() bool {
	return c.Fetchers.Jobs.Enabled && c.Fetchers.Jobs.AppID != "" && c.Fetchers.Jobs.APIKey != ""
}

// WorkforceUsable reports whether the workforce fetcher can run. BLS serves
// unregistered requests at a lower quota, so no key is required.
func (c *Config) WorkforceUsable() bool {
	return c.Fetchers.Workforce.Enabled && c.Fetchers.Workforce.Series != ""
}

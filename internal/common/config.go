package common

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Claude      ClaudeConfig  `toml:"claude"`
	Gemini      GeminiConfig  `toml:"gemini"`
	Market      MarketConfig  `toml:"market"`
	Jobs        JobsConfig    `toml:"jobs"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// ClaudeConfig contains Anthropic Claude API configuration for the generator
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (env ANTHROPIC_API_KEY overrides)
	Model       string  `toml:"model"`       // Model for generation (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Max response tokens (default: 4096)
	Temperature float32 `toml:"temperature"` // Generation temperature (default: 0.7)
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "90s")
}

// GeminiConfig contains Google Gemini API configuration for the context provider
type GeminiConfig struct {
	APIKey  string `toml:"api_key"` // Google Gemini API key (env GEMINI_API_KEY overrides)
	Model   string `toml:"model"`   // Model for grounded search (default: "gemini-3-flash-preview")
	Timeout string `toml:"timeout"` // Per-call timeout as duration string (default: "30s")
}

// MarketConfig contains market snapshot client configuration
type MarketConfig struct {
	APIKey    string   `toml:"api_key"`    // EODHD API key; empty disables the snapshot step
	Indices   []string `toml:"indices"`    // Index symbols for the daily snapshot line
	RateLimit int      `toml:"rate_limit"` // Requests per second (default: 10)
	Timeout   string   `toml:"timeout"`    // HTTP timeout as duration string (default: "30s")
}

// JobsConfig contains scheduling configuration shared by the registered job specs
type JobsConfig struct {
	Timezone      string   `toml:"timezone"`       // IANA zone for date keys and boundaries (default: "America/New_York")
	QuizBoundary  string   `toml:"quiz_boundary"`  // HH:MM wall clock for the quiz job (default: "06:00")
	NewsBoundary  string   `toml:"news_boundary"`  // HH:MM wall clock for the news job (default: "06:30")
	Sectors       []string `toml:"sectors"`        // Sector brief sub-keys
	ContextBudget string   `toml:"context_budget"` // Context fetch timeout as duration string (default: "30s")
}

// DefaultConfig returns a Config populated with defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/dailybrief",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			Temperature: 0.7,
			Timeout:     "90s",
		},
		Gemini: GeminiConfig{
			Model:   "gemini-3-flash-preview",
			Timeout: "30s",
		},
		Market: MarketConfig{
			Indices:   []string{"GSPC.INDX", "DJI.INDX", "IXIC.INDX"},
			RateLimit: 10,
			Timeout:   "30s",
		},
		Jobs: JobsConfig{
			Timezone:      "America/New_York",
			QuizBoundary:  "06:00",
			NewsBoundary:  "06:30",
			Sectors:       []string{"technology", "energy", "defense", "healthcare"},
			ContextBudget: "30s",
		},
	}
}

// LoadFromFile loads configuration from a TOML file over defaults, then
// applies environment variable overrides for secrets.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variables over file values.
// Environment wins for secrets so keys never need to live in config files.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("EODHD_API_TOKEN"); v != "" {
		config.Market.APIKey = v
	}
	if v := os.Getenv("DAILYBRIEF_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("DAILYBRIEF_DATA_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Jobs.Timezone); err != nil {
		return fmt.Errorf("invalid jobs timezone %q: %w", c.Jobs.Timezone, err)
	}
	for name, boundary := range map[string]string{
		"quiz_boundary": c.Jobs.QuizBoundary,
		"news_boundary": c.Jobs.NewsBoundary,
	} {
		if _, _, err := ParseBoundary(boundary); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, boundary, err)
		}
	}
	for name, d := range map[string]string{
		"claude.timeout":      c.Claude.Timeout,
		"gemini.timeout":      c.Gemini.Timeout,
		"market.timeout":      c.Market.Timeout,
		"jobs.context_budget": c.Jobs.ContextBudget,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, d, err)
		}
	}
	return nil
}

// MustDuration parses a duration string that Validate has already accepted.
func MustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("invalid duration %q: %v", s, err))
	}
	return d
}

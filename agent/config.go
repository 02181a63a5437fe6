package agent

import (
	"time"

	"github.com/tailored-agentic-units/router/orchestrate/config"
)

// Config selects and tunes the model provider behind the ports.
//
// Example YAML:
//
//	agent:
//	  provider: gemini
//	  model: gemini-2.0-flash
//	  timeout: 45s
//	  max_retries: 2
type Config struct {
	Provider     string          `json:"provider" yaml:"provider" toml:"provider"`
	Model        string          `json:"model" yaml:"model" toml:"model"`
	APIKey       string          `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key,omitempty"`
	BaseURL      string          `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	Timeout      config.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	// MaxRetries below zero disables retries.
	MaxRetries   int             `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	RetryBackoff config.Duration `json:"retry_backoff" yaml:"retry_backoff" toml:"retry_backoff"`
	Temperature  *float64        `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`
}

// DefaultConfig targets Gemini Flash with a one minute budget per attempt.
func DefaultConfig() Config {
	return Config{
		Provider:     "gemini",
		Model:        "gemini-2.0-flash",
		Timeout:      config.Duration(60 * time.Second),
		MaxRetries:   2,
		RetryBackoff: config.Duration(500 * time.Millisecond),
	}
}

func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}

	if source.Model != "" {
		c.Model = source.Model
	}

	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}

	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}

	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}

	if source.MaxRetries != 0 {
		c.MaxRetries = source.MaxRetries
	}

	if source.RetryBackoff > 0 {
		c.RetryBackoff = source.RetryBackoff
	}

	if source.Temperature != nil {
		c.Temperature = source.Temperature
	}
}

package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/artifact"
	"github.com/tailored-agentic-units/router/orchestrate/config"
)

const (
	defaultGraphName   = "router"
	defaultConcurrency = 4
)

// RedisConfig locates the checkpoint store used when
// graph.checkpoint.store is "redis".
type RedisConfig struct {
	Addr     string          `json:"addr" yaml:"addr" toml:"addr"`
	Password string          `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	DB       int             `json:"db,omitempty" yaml:"db,omitempty" toml:"db,omitempty"`
	Prefix   string          `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`
	TTL      config.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty" toml:"ttl,omitempty"`
}

func (c *RedisConfig) Merge(source *RedisConfig) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.Password != "" {
		c.Password = source.Password
	}
	if source.DB != 0 {
		c.DB = source.DB
	}
	if source.Prefix != "" {
		c.Prefix = source.Prefix
	}
	if source.TTL > 0 {
		c.TTL = source.TTL
	}
}

// Config holds initialization parameters for every subsystem the kernel
// wires together.
type Config struct {
	Agent       agent.Config       `json:"agent" yaml:"agent" toml:"agent"`
	Graph       config.GraphConfig `json:"graph" yaml:"graph" toml:"graph"`
	Artifacts   artifact.Config    `json:"artifacts" yaml:"artifacts" toml:"artifacts"`
	Redis       RedisConfig        `json:"redis" yaml:"redis" toml:"redis"`
	Concurrency int                `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:       agent.DefaultConfig(),
		Graph:       config.DefaultGraphConfig(defaultGraphName),
		Artifacts:   artifact.DefaultConfig(),
		Redis:       RedisConfig{Addr: "localhost:6379"},
		Concurrency: defaultConcurrency,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Graph.Merge(&source.Graph)
	c.Artifacts.Merge(&source.Artifacts)
	c.Redis.Merge(&source.Redis)

	if source.Concurrency > 0 {
		c.Concurrency = source.Concurrency
	}
}

// LoadConfig reads a JSON, YAML or TOML config file, chosen by extension,
// merges it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		err = json.Unmarshal(data, &loaded)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	case ".toml":
		err = toml.Unmarshal(data, &loaded)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

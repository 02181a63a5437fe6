package artifact

import "github.com/tailored-agentic-units/router/observability"

// Config holds artifact store parameters.
type Config struct {
	Dir    string `json:"dir" yaml:"dir" toml:"dir"`
	PerRun bool   `json:"per_run,omitempty" yaml:"per_run,omitempty" toml:"per_run,omitempty"`
}

// DefaultConfig writes fixed file names into the working directory.
func DefaultConfig() Config {
	return Config{Dir: "."}
}

func (c *Config) Merge(source *Config) {
	if source.Dir != "" {
		c.Dir = source.Dir
	}

	if source.PerRun {
		c.PerRun = true
	}
}

// NewStore builds a FileStore from cfg.
func NewStore(cfg Config, observer observability.Observer) *FileStore {
	opts := []Option{}
	if observer != nil {
		opts = append(opts, WithObserver(observer))
	}
	if cfg.PerRun {
		opts = append(opts, WithPerRun())
	}
	return NewFileStore(cfg.Dir, opts...)
}

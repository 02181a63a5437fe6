package config

// CheckpointConfig controls state persistence during execution.
//
// Store names a checkpoint store registered with the state package.
// Interval saves a checkpoint after every N action stages (0 disables
// checkpointing). Preserve keeps checkpoints after a run completes.
type CheckpointConfig struct {
	Store    string `json:"store" yaml:"store" toml:"store"`
	Interval int    `json:"interval" yaml:"interval" toml:"interval"`
	Preserve bool   `json:"preserve" yaml:"preserve" toml:"preserve"`
}

// DefaultCheckpointConfig returns checkpointing disabled, backed by the
// in-memory store once enabled.
func DefaultCheckpointConfig() CheckpointConfig {
	return CheckpointConfig{
		Store:    "memory",
		Interval: 0,
		Preserve: false,
	}
}

func (c *CheckpointConfig) Merge(source *CheckpointConfig) {
	if source.Store != "" {
		c.Store = source.Store
	}

	if source.Interval > 0 {
		c.Interval = source.Interval
	}

	if source.Preserve {
		c.Preserve = source.Preserve
	}
}

// Enabled reports whether checkpoints are saved during execution.
func (c CheckpointConfig) Enabled() bool {
	return c.Interval > 0
}

// GraphConfig configures a stage graph.
//
// Example JSON:
//
//	{
//	  "name": "router",
//	  "observer": "slog",
//	  "max_iterations": 32,
//	  "checkpoint": {"store": "redis", "interval": 1}
//	}
type GraphConfig struct {
	// Name identifies the graph in events and metrics
	Name string `json:"name" yaml:"name" toml:"name"`

	// Observer names the registered observer ("noop", "slog", ...)
	Observer string `json:"observer" yaml:"observer" toml:"observer"`

	// MaxIterations bounds the number of stage visits in one run
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" toml:"max_iterations"`

	Checkpoint CheckpointConfig `json:"checkpoint" yaml:"checkpoint" toml:"checkpoint"`
}

// DefaultGraphConfig returns defaults for a graph called name. The iteration
// bound is far above the depth of any acyclic topology the builder accepts,
// so it only trips on a misbehaving stage set.
func DefaultGraphConfig(name string) GraphConfig {
	return GraphConfig{
		Name:          name,
		Observer:      "slog",
		MaxIterations: 64,
		Checkpoint:    DefaultCheckpointConfig(),
	}
}

func (c *GraphConfig) Merge(source *GraphConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}

	c.Checkpoint.Merge(&source.Checkpoint)
}

// Package kernel composes the routing graph with its language model ports,
// artifact store and checkpoint store, and exposes a single Invoke entry
// point.
//
// The kernel initializes from configuration via New. Functional options
// inject any subsystem instead, which is how tests and embedding programs
// supply their own Classifier and Generator.
//
//	k, err := kernel.New(&cfg)
//	result, err := k.Invoke(ctx, "Write a hello world in rust")
package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/router/agent"
	_ "github.com/tailored-agentic-units/router/agent/gemini"
	"github.com/tailored-agentic-units/router/artifact"
	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/redisstore"
	"github.com/tailored-agentic-units/router/orchestrate/state"
	"github.com/tailored-agentic-units/router/router"
)

// Invoker runs one input through the router. *Kernel satisfies it, as does
// the connect client in transport/rpc.
type Invoker interface {
	Invoke(ctx context.Context, input string) (*Result, error)
}

// Option configures a Kernel. Options are applied before config-driven
// initialization, and anything they set is used instead of the config.
type Option func(*Kernel)

// WithClassifier injects the Classifier used by every decision stage.
func WithClassifier(c agent.Classifier) Option {
	return func(k *Kernel) { k.classifier = c }
}

// WithGenerator injects the Generator used by every handler.
func WithGenerator(g agent.Generator) Option {
	return func(k *Kernel) { k.generator = g }
}

// WithArtifactStore overrides the config-created artifact store. An injected
// store is used for batches as well.
func WithArtifactStore(s artifact.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithCheckpointStore overrides the store named by graph.checkpoint.store.
func WithCheckpointStore(s state.CheckpointStore) Option {
	return func(k *Kernel) { k.checkpoints = s }
}

// WithRegistry replaces the default stage registry.
func WithRegistry(r *router.Registry) Option {
	return func(k *Kernel) { k.registry = r }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithLogger routes events to logger through a SlogObserver.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kernel) { k.observer = observability.NewSlogObserver(logger) }
}

// Kernel runs requests through the routing graph.
type Kernel struct {
	cfg         Config
	classifier  agent.Classifier
	generator   agent.Generator
	store       artifact.Store
	checkpoints state.CheckpointStore
	registry    *router.Registry
	observer    observability.Observer
	graph       *state.Graph
	batchGraph  *state.Graph
	closers     []func() error
}

// New creates a Kernel from configuration. Ports and stores not supplied
// through options are created from their config sections. A registry missing
// a required stage fails here with router.ErrMissingImplementation.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	k := &Kernel{cfg: merged}
	for _, opt := range opts {
		opt(k)
	}

	if k.observer == nil {
		k.observer = observability.NewSlogObserver(slog.Default())
	}

	if err := k.initPorts(); err != nil {
		return nil, err
	}
	if err := k.initCheckpoints(); err != nil {
		return nil, err
	}
	if err := k.initGraphs(); err != nil {
		k.Close()
		return nil, err
	}

	return k, nil
}

func (k *Kernel) initPorts() error {
	if k.classifier != nil && k.generator != nil {
		return nil
	}

	a, err := agent.FromConfig(k.cfg.Agent, agent.WithObserver(k.observer))
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	if k.classifier == nil {
		k.classifier = a
	}
	if k.generator == nil {
		k.generator = a
	}
	return nil
}

func (k *Kernel) initCheckpoints() error {
	if k.checkpoints != nil || !k.cfg.Graph.Checkpoint.Enabled() {
		return nil
	}
	if k.cfg.Graph.Checkpoint.Store != "redis" {
		return nil
	}

	var opts []redisstore.Option
	if k.cfg.Redis.Prefix != "" {
		opts = append(opts, redisstore.WithPrefix(k.cfg.Redis.Prefix))
	}
	if k.cfg.Redis.TTL > 0 {
		opts = append(opts, redisstore.WithTTL(k.cfg.Redis.TTL.Std()))
	}

	store := redisstore.New(k.cfg.Redis.Addr, k.cfg.Redis.Password, k.cfg.Redis.DB, opts...)
	k.checkpoints = store
	k.closers = append(k.closers, store.Close)
	return nil
}

func (k *Kernel) initGraphs() error {
	build := func(store artifact.Store) (*state.Graph, error) {
		reg := k.registry
		if reg == nil {
			reg = router.NewDefaultRegistry(k.classifier, k.generator, store)
		}

		opts := []state.Option{state.WithObserver(k.observer)}
		if k.checkpoints != nil {
			opts = append(opts, state.WithCheckpointStore(k.checkpoints))
		}

		g, err := router.Build(reg, k.cfg.Graph, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to build graph: %w", err)
		}
		return g, nil
	}

	injected := k.store != nil
	if !injected {
		k.store = artifact.NewStore(k.cfg.Artifacts, k.observer)
	}

	g, err := build(k.store)
	if err != nil {
		return err
	}
	k.graph = g

	if injected || k.registry != nil || k.cfg.Artifacts.PerRun {
		k.batchGraph = g
		return nil
	}

	perRun := k.cfg.Artifacts
	perRun.PerRun = true
	k.batchGraph, err = build(artifact.NewStore(perRun, k.observer))
	return err
}

// Config returns the effective configuration.
func (k *Kernel) Config() Config {
	return k.cfg
}

// Graph returns the compiled routing graph.
func (k *Kernel) Graph() *state.Graph {
	return k.graph
}

// Close releases connections opened from configuration.
func (k *Kernel) Close() error {
	var errs []error
	for _, closer := range k.closers {
		errs = append(errs, closer())
	}
	k.closers = nil
	return errors.Join(errs...)
}

// Invoke routes one raw input through the graph. A port or store failure
// returns an error and no Result; a missing input is reported in
// Result.Error.
func (k *Kernel) Invoke(ctx context.Context, input string) (*Result, error) {
	return k.invoke(ctx, k.graph, input)
}

func (k *Kernel) invoke(ctx context.Context, g *state.Graph, input string) (*Result, error) {
	initial := router.NewState(input, k.observer)
	begin := time.Now()

	observability.Emit(ctx, k.observer, EventInvokeStart, observability.LevelInfo, "kernel.Invoke", map[string]any{
		"run_id":       initial.RunID,
		"input_length": len(input),
	})

	final, err := g.Execute(ctx, initial)
	if err != nil {
		return nil, k.invokeError(ctx, initial.RunID, err)
	}

	return k.complete(ctx, final, begin)
}

// Resume continues a checkpointed run.
func (k *Kernel) Resume(ctx context.Context, runID string) (*Result, error) {
	begin := time.Now()

	final, err := k.graph.Resume(ctx, runID)
	if err != nil {
		return nil, k.invokeError(ctx, runID, err)
	}

	return k.complete(ctx, final, begin)
}

func (k *Kernel) complete(ctx context.Context, final state.State, begin time.Time) (*Result, error) {
	result, err := newResult(final)
	if err != nil {
		return nil, k.invokeError(ctx, final.RunID, err)
	}

	observability.Emit(ctx, k.observer, EventInvokeComplete, observability.LevelInfo, "kernel.Invoke", map[string]any{
		"run_id":   result.RunID,
		"duration": time.Since(begin),
		"saved":    result.Saved(),
		"error":    result.Error,
	})

	return result, nil
}

func (k *Kernel) invokeError(ctx context.Context, runID string, err error) error {
	observability.Emit(ctx, k.observer, EventInvokeError, observability.LevelError, "kernel.Invoke", map[string]any{
		"run_id": runID,
		"error":  err,
	})
	return err
}

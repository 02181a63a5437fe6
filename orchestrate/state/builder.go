package state

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/config"
)

type decision struct {
	node     DecisionNode
	routes   Routes
	fallback string
}

// Builder assembles a Graph. It is not safe for concurrent use; build once
// at startup and share the resulting Graph.
type Builder struct {
	cfg       config.GraphConfig
	observer  observability.Observer
	store     CheckpointStore
	order     []string
	actions   map[string]ActionNode
	decisions map[string]decision
	edges     map[string]string
	entry     string
	writeOnce map[string]bool
	ephemeral map[string]bool
}

// Option customizes a Builder.
type Option func(*Builder)

// WithObserver overrides the observer named in the configuration.
func WithObserver(observer observability.Observer) Option {
	return func(b *Builder) {
		b.observer = observer
	}
}

// WithCheckpointStore overrides the store named in the configuration.
func WithCheckpointStore(store CheckpointStore) Option {
	return func(b *Builder) {
		b.store = store
	}
}

// WithWriteOnce marks keys that an update may only set while empty.
func WithWriteOnce(keys ...string) Option {
	return func(b *Builder) {
		for _, k := range keys {
			b.writeOnce[k] = true
		}
	}
}

// WithEphemeral marks keys that are never merged into state.
func WithEphemeral(keys ...string) Option {
	return func(b *Builder) {
		for _, k := range keys {
			b.ephemeral[k] = true
		}
	}
}

// NewBuilder resolves the observer and, when checkpointing is enabled, the
// checkpoint store named by cfg unless options supply them.
func NewBuilder(cfg config.GraphConfig, opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:       cfg,
		actions:   make(map[string]ActionNode),
		decisions: make(map[string]decision),
		edges:     make(map[string]string),
		writeOnce: make(map[string]bool),
		ephemeral: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.observer == nil {
		observer, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		b.observer = observer
	}

	if b.store == nil && cfg.Checkpoint.Enabled() {
		store, err := GetCheckpointStore(cfg.Checkpoint.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve checkpoint store: %w", err)
		}
		b.store = store
	}

	return b, nil
}

func (b *Builder) checkName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if name == End {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	if _, exists := b.actions[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStage, name)
	}
	if _, exists := b.decisions[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStage, name)
	}
	return nil
}

// AddAction registers an action stage. Give it an outgoing edge with AddEdge.
func (b *Builder) AddAction(name string, node ActionNode) error {
	if err := b.checkName(name); err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNilNode, name)
	}

	b.actions[name] = node
	b.order = append(b.order, name)
	return nil
}

// AddDecision registers a decision stage. A label the node returns that is
// not in routes is replaced by fallback at run time, so fallback must itself
// be a route.
func (b *Builder) AddDecision(name string, node DecisionNode, routes Routes, fallback string) error {
	if err := b.checkName(name); err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNilNode, name)
	}
	if len(routes) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyRoutes, name)
	}
	if _, ok := routes[fallback]; !ok {
		return fmt.Errorf("%w: %s has no route %q", ErrInvalidFallback, name, fallback)
	}

	b.decisions[name] = decision{node: node, routes: maps.Clone(routes), fallback: fallback}
	b.order = append(b.order, name)
	return nil
}

// AddEdge sets the fixed successor of an action stage. to may be End.
func (b *Builder) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return ErrEmptyName
	}
	if _, isDecision := b.decisions[from]; isDecision {
		return fmt.Errorf("%w: %s", ErrEdgeFromDecision, from)
	}
	if _, exists := b.actions[from]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownStage, from)
	}
	if existing, exists := b.edges[from]; exists {
		return fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, from, existing)
	}

	b.edges[from] = to
	return nil
}

// SetEntryPoint names the first stage of every run.
func (b *Builder) SetEntryPoint(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	b.entry = name
	return nil
}

func (b *Builder) exists(name string) bool {
	if name == End {
		return true
	}
	_, isAction := b.actions[name]
	_, isDecision := b.decisions[name]
	return isAction || isDecision
}

func (b *Builder) successors(name string) []string {
	if d, ok := b.decisions[name]; ok {
		targets := make([]string, 0, len(d.routes))
		for _, target := range d.routes {
			targets = append(targets, target)
		}
		slices.Sort(targets)
		return slices.Compact(targets)
	}
	return []string{b.edges[name]}
}

// Validate checks the structure without producing a Graph. Build calls it.
func (b *Builder) Validate() error {
	if b.entry == "" {
		return ErrNoEntryPoint
	}
	if !b.exists(b.entry) || b.entry == End {
		return fmt.Errorf("%w: entry point %s", ErrUnknownStage, b.entry)
	}

	var errs []error
	for _, name := range b.order {
		if _, isAction := b.actions[name]; isAction {
			to, ok := b.edges[name]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingEdge, name))
				continue
			}
			if !b.exists(to) {
				errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrUnknownStage, name, to))
			}
			continue
		}

		d := b.decisions[name]
		for _, label := range sortedLabels(d.routes) {
			if target := d.routes[label]; !b.exists(target) {
				errs = append(errs, fmt.Errorf("%w: %s[%s] -> %s", ErrUnknownStage, name, label, target))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return b.checkAcyclic()
}

// checkAcyclic runs a depth-first search from every stage and reports the
// first back edge found.
func (b *Builder) checkAcyclic() error {
	const (
		unvisited = iota
		active
		done
	)

	color := make(map[string]int, len(b.order))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		if name == End {
			return nil
		}
		switch color[name] {
		case active:
			start := slices.Index(stack, name)
			cycle := append(slices.Clone(stack[start:]), name)
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
		case done:
			return nil
		}

		color[name] = active
		stack = append(stack, name)
		for _, next := range b.successors(name) {
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = done
		return nil
	}

	for _, name := range b.order {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Build validates the stages and returns an immutable Graph.
func (b *Builder) Build() (*Graph, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("graph %s: %w", b.cfg.Name, err)
	}

	g := &Graph{
		name:          b.cfg.Name,
		entry:         b.entry,
		order:         slices.Clone(b.order),
		actions:       maps.Clone(b.actions),
		decisions:     maps.Clone(b.decisions),
		edges:         maps.Clone(b.edges),
		writeOnce:     maps.Clone(b.writeOnce),
		ephemeral:     maps.Clone(b.ephemeral),
		maxIterations: b.cfg.MaxIterations,
		observer:      b.observer,
		store:         b.store,
		checkpoint:    b.cfg.Checkpoint,
	}
	if g.maxIterations <= 0 {
		g.maxIterations = config.DefaultGraphConfig(g.name).MaxIterations
	}
	if g.store == nil {
		g.checkpoint.Interval = 0
	}

	return g, nil
}

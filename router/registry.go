package router

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/artifact"
	"github.com/tailored-agentic-units/router/orchestrate/state"
)

type entry struct {
	kind     state.Kind
	action   state.ActionNode
	decision state.DecisionNode
}

// Registry is the table of stage implementations Build draws from. It is
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// NewDefaultRegistry registers the standard implementation of every stage in
// the routing graph.
func NewDefaultRegistry(classifier agent.Classifier, generator agent.Generator, store artifact.Store) *Registry {
	r := NewRegistry()

	decisions := []*Decision{
		NewTopRouter(classifier),
		NewCodeRouter(classifier),
		NewTextRouter(classifier),
	}
	for _, d := range decisions {
		r.mustRegister(d.Name, entry{kind: state.KindDecision, decision: d})
	}

	actions := map[string]state.ActionNode{
		StageQuestion:     NewQuestion(generator),
		StageAnswer:       state.PassThrough,
		StageCode:         state.PassThrough,
		StageText:         state.PassThrough,
		StageGenerateCode: NewGenerateCode(generator),
		StageEditCode:     NewEditCode(generator),
		StageGenerateText: NewGenerateText(generator),
		StageEditText:     NewEditText(generator),
		StageSaveCode:     &SaveCode{Generator: generator, Store: store},
		StageSaveText:     &SaveText{Store: store},
	}
	for name, node := range actions {
		r.mustRegister(name, entry{kind: state.KindAction, action: node})
	}

	return r
}

func (r *Registry) mustRegister(name string, e entry) {
	if err := r.register(name, e); err != nil {
		panic(err)
	}
}

func (r *Registry) register(name string, e entry) error {
	if name == "" {
		return ErrEmptyName
	}
	if e.action == nil && e.decision == nil {
		return fmt.Errorf("stage %s: nil implementation", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	r.entries[name] = e
	return nil
}

// RegisterAction adds an action stage implementation.
func (r *Registry) RegisterAction(name string, node state.ActionNode) error {
	return r.register(name, entry{kind: state.KindAction, action: node})
}

// RegisterDecision adds a decision stage implementation.
func (r *Registry) RegisterDecision(name string, node state.DecisionNode) error {
	return r.register(name, entry{kind: state.KindDecision, decision: node})
}

// Replace swaps the implementation of an existing stage, keeping its kind.
func (r *Registry) Replace(name string, node any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	switch n := node.(type) {
	case state.ActionNode:
		if e.kind != state.KindAction {
			return fmt.Errorf("%w: %s is a %s", ErrWrongKind, name, e.kind)
		}
		e.action = n
	case state.DecisionNode:
		if e.kind != state.KindDecision {
			return fmt.Errorf("%w: %s is a %s", ErrWrongKind, name, e.kind)
		}
		e.decision = n
	default:
		return fmt.Errorf("stage %s: %T is neither an action nor a decision", name, node)
	}

	r.entries[name] = e
	return nil
}

// Unregister removes a stage.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	delete(r.entries, name)
	return nil
}

// Action returns the action registered under name.
func (r *Registry) Action(name string) (state.ActionNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if e.kind != state.KindAction {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongKind, name, e.kind)
	}
	return e.action, nil
}

// Decision returns the decision registered under name.
func (r *Registry) Decision(name string) (state.DecisionNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if e.kind != state.KindDecision {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongKind, name, e.kind)
	}
	return e.decision, nil
}

// Names returns every registered stage name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

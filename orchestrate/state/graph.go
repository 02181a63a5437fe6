package state

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/config"
)

// Graph is a validated, immutable stage topology. Execute may be called
// concurrently; each call works on its own State.
type Graph struct {
	name          string
	entry         string
	order         []string
	actions       map[string]ActionNode
	decisions     map[string]decision
	edges         map[string]string
	writeOnce     map[string]bool
	ephemeral     map[string]bool
	maxIterations int
	observer      observability.Observer
	store         CheckpointStore
	checkpoint    config.CheckpointConfig
}

// Name returns the graph identifier used as event source.
func (g *Graph) Name() string {
	return g.name
}

// Entry returns the first stage of every run.
func (g *Graph) Entry() string {
	return g.entry
}

// Stages lists stages in registration order.
func (g *Graph) Stages() []StageInfo {
	stages := make([]StageInfo, 0, len(g.order))
	for _, name := range g.order {
		info := StageInfo{Name: name, Kind: KindAction, Entry: name == g.entry}
		if d, ok := g.decisions[name]; ok {
			info.Kind = KindDecision
			info.Fallback = d.fallback
		}
		stages = append(stages, info)
	}
	return stages
}

// Edges lists every transition, stages in registration order and routes
// sorted by label.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, name := range g.order {
		if d, ok := g.decisions[name]; ok {
			for _, label := range sortedLabels(d.routes) {
				edges = append(edges, Edge{From: name, To: d.routes[label], Label: label})
			}
			continue
		}
		edges = append(edges, Edge{From: name, To: g.edges[name]})
	}
	return edges
}

// Execute runs the graph from its entry stage.
//
// Decision stages pick the next stage without changing state. Action stages
// return an update that is merged, after applying the write-once and
// ephemeral key policies, before their fixed edge is followed. The run ends
// when End is reached.
//
// Failures are returned as *ExecutionError together with the state as it was
// when the failing stage started.
func (g *Graph) Execute(ctx context.Context, initial State) (State, error) {
	return g.execute(ctx, g.entry, initial)
}

// Resume loads the checkpoint for runID and continues from the fixed edge of
// the last checkpointed action. A checkpoint taken before any action ran
// restarts from the entry stage.
func (g *Graph) Resume(ctx context.Context, runID string) (State, error) {
	if g.store == nil {
		return State{}, ErrCheckpointing
	}

	s, err := g.store.Load(ctx, runID)
	if err != nil {
		return State{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	g.emit(ctx, EventCheckpointLoad, observability.LevelInfo, map[string]any{
		"node":   s.CheckpointNode,
		"run_id": runID,
	})

	next := g.entry
	if s.CheckpointNode != "" {
		to, ok := g.edges[s.CheckpointNode]
		if !ok {
			return State{}, fmt.Errorf("%w: checkpoint node %s", ErrUnknownStage, s.CheckpointNode)
		}
		next = to
	}
	if next == End {
		return s, fmt.Errorf("%w: %s", ErrRunComplete, runID)
	}

	g.emit(ctx, EventCheckpointResume, observability.LevelInfo, map[string]any{
		"checkpoint_node": s.CheckpointNode,
		"resume_node":     next,
		"run_id":          runID,
	})

	return g.execute(ctx, next, s)
}

func (g *Graph) execute(ctx context.Context, start string, initial State) (State, error) {
	s := initial
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	if s.Observer == nil {
		s.Observer = g.observer
	}

	begin := time.Now()
	g.emit(ctx, EventGraphStart, observability.LevelInfo, map[string]any{
		"entry_point": start,
		"run_id":      s.RunID,
	})

	current := start
	iterations := 0
	actions := 0
	path := make([]string, 0, len(g.order))

	fail := func(node string, err error) (State, error) {
		g.emit(ctx, EventGraphFailed, observability.LevelError, map[string]any{
			"node":     node,
			"run_id":   s.RunID,
			"path":     strings.Join(path, ","),
			"duration": time.Since(begin),
			"error":    err,
		})
		return s, &ExecutionError{NodeName: node, State: s, Path: path, Err: err}
	}

	for current != End {
		if err := ctx.Err(); err != nil {
			return fail(current, fmt.Errorf("execution cancelled: %w", err))
		}

		iterations++
		if iterations > g.maxIterations {
			return fail(current, fmt.Errorf("%w (%d)", ErrMaxIterations, g.maxIterations))
		}
		path = append(path, current)

		if d, ok := g.decisions[current]; ok {
			next, err := g.decide(ctx, current, d, s)
			if err != nil {
				return fail(current, err)
			}
			g.transition(ctx, current, next, s.RunID)
			current = next
			continue
		}

		node, ok := g.actions[current]
		if !ok {
			return fail(current, fmt.Errorf("%w: %s", ErrUnknownStage, current))
		}

		update, err := g.act(ctx, current, node, s)
		if err != nil {
			return fail(current, fmt.Errorf("node execution failed: %w", err))
		}

		s = g.apply(ctx, current, s, update).SetCheckpointNode(current)
		actions++

		if g.checkpoint.Enabled() && actions%g.checkpoint.Interval == 0 {
			if err := g.store.Save(ctx, s); err != nil {
				return fail(current, fmt.Errorf("checkpoint save failed: %w", err))
			}
			g.emit(ctx, EventCheckpointSave, observability.LevelInfo, map[string]any{
				"node":   current,
				"run_id": s.RunID,
			})
		}

		next := g.edges[current]
		g.transition(ctx, current, next, s.RunID)
		current = next
	}

	g.emit(ctx, EventGraphComplete, observability.LevelInfo, map[string]any{
		"run_id":     s.RunID,
		"iterations": iterations,
		"path":       strings.Join(path, ","),
		"duration":   time.Since(begin),
	})

	if g.checkpoint.Enabled() && !g.checkpoint.Preserve {
		if err := g.store.Delete(ctx, s.RunID); err != nil {
			g.emit(ctx, EventCheckpointDelete, observability.LevelWarning, map[string]any{
				"run_id": s.RunID,
				"error":  err,
			})
		}
	}

	return s, nil
}

func (g *Graph) decide(ctx context.Context, name string, d decision, s State) (string, error) {
	g.emit(ctx, EventNodeStart, observability.LevelVerbose, map[string]any{
		"node": name,
		"kind": string(KindDecision),
	})

	begin := time.Now()
	label, err := d.node.Decide(ctx, s)

	g.emit(ctx, EventNodeComplete, observability.LevelVerbose, map[string]any{
		"node":     name,
		"kind":     string(KindDecision),
		"duration": time.Since(begin),
		"error":    err != nil,
	})

	if err != nil {
		return "", fmt.Errorf("decision failed: %w", err)
	}

	next, ok := d.routes[label]
	fallback := !ok
	if fallback {
		g.emit(ctx, EventDecisionFallback, observability.LevelWarning, map[string]any{
			"node":     name,
			"label":    label,
			"fallback": d.fallback,
		})
		label = d.fallback
		next = d.routes[label]
	}

	g.emit(ctx, EventDecisionRoute, observability.LevelInfo, map[string]any{
		"node":     name,
		"label":    label,
		"target":   next,
		"fallback": fallback,
		"run_id":   s.RunID,
	})
	return next, nil
}

func (g *Graph) act(ctx context.Context, name string, node ActionNode, s State) (Update, error) {
	g.emit(ctx, EventNodeStart, observability.LevelVerbose, map[string]any{
		"node": name,
		"kind": string(KindAction),
	})

	begin := time.Now()
	update, err := node.Execute(ctx, s)

	g.emit(ctx, EventNodeComplete, observability.LevelVerbose, map[string]any{
		"node":     name,
		"kind":     string(KindAction),
		"duration": time.Since(begin),
		"error":    err != nil,
	})

	return update, err
}

// apply enforces the key policies and merges what remains of update.
func (g *Graph) apply(ctx context.Context, node string, s State, update Update) State {
	if len(update) == 0 {
		return s
	}

	accepted := make(Update, len(update))
	for key, value := range update {
		if g.ephemeral[key] {
			g.emit(ctx, EventKeyDropped, observability.LevelWarning, map[string]any{
				"node": node,
				"key":  key,
			})
			continue
		}
		if g.writeOnce[key] && strings.TrimSpace(s.String(key)) != "" {
			if value != s.String(key) {
				g.emit(ctx, EventKeyProtected, observability.LevelVerbose, map[string]any{
					"node": node,
					"key":  key,
				})
			}
			continue
		}
		accepted[key] = value
	}

	merged := s.Merge(accepted)
	g.emit(ctx, EventNodeState, observability.LevelVerbose, map[string]any{
		"node":        node,
		"update_keys": strings.Join(slices.Sorted(maps.Keys(accepted)), ","),
	})
	return merged
}

func (g *Graph) transition(ctx context.Context, from, to, runID string) {
	g.emit(ctx, EventEdgeTransition, observability.LevelVerbose, map[string]any{
		"from":   from,
		"to":     to,
		"run_id": runID,
	})
}

func (g *Graph) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(ctx, g.observer, typ, level, g.name, data)
}

func sortedLabels(routes Routes) []string {
	return slices.Sorted(maps.Keys(routes))
}

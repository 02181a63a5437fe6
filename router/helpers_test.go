package router_test

import (
	"context"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/artifact"
	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/config"
	"github.com/tailored-agentic-units/router/orchestrate/state"
	"github.com/tailored-agentic-units/router/router"
)

func testConfig() config.GraphConfig {
	cfg := config.DefaultGraphConfig("router-test")
	cfg.Observer = "noop"
	return cfg
}

func buildGraph(t *testing.T, classifier agent.Classifier, generator agent.Generator, store artifact.Store, opts ...state.Option) *state.Graph {
	t.Helper()
	g, err := router.Build(router.NewDefaultRegistry(classifier, generator, store), testConfig(), opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func stateWith(data map[string]any) state.State {
	s := state.New(nil)
	for k, v := range data {
		s.Data[k] = v
	}
	return s
}

type recorder struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recorder) OnEvent(ctx context.Context, e observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(typ observability.EventType) []observability.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []observability.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// path returns the stages a run completed, in order.
func (r *recorder) path() []string {
	var out []string
	for _, e := range r.ofType(state.EventNodeComplete) {
		if name, ok := e.Data["node"].(string); ok {
			out = append(out, name)
		}
	}
	return out
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

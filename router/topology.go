package router

import (
	"errors"

	"github.com/tailored-agentic-units/router/observability"
	"github.com/tailored-agentic-units/router/orchestrate/config"
	"github.com/tailored-agentic-units/router/orchestrate/state"
)

type stage struct {
	name     string
	kind     state.Kind
	next     string
	routes   state.Routes
	fallback string
}

// topology lists every required stage. Order determines which missing stage
// Build reports first.
var topology = []stage{
	{
		name: StageRouter,
		kind: state.KindDecision,
		routes: state.Routes{
			StageQuestion: StageQuestion,
			StageCode:     StageCode,
			StageText:     StageText,
		},
		fallback: StageText,
	},
	{name: StageQuestion, kind: state.KindAction, next: StageAnswer},
	{name: StageAnswer, kind: state.KindAction, next: state.End},
	{name: StageCode, kind: state.KindAction, next: StageCodeRouter},
	{
		name: StageCodeRouter,
		kind: state.KindDecision,
		routes: state.Routes{
			StageGenerateCode: StageGenerateCode,
			StageEditCode:     StageEditCode,
		},
		fallback: StageGenerateCode,
	},
	{name: StageText, kind: state.KindAction, next: StageTextRouter},
	{
		name: StageTextRouter,
		kind: state.KindDecision,
		routes: state.Routes{
			StageGenerateText: StageGenerateText,
			StageEditText:     StageEditText,
		},
		fallback: StageGenerateText,
	},
	{name: StageGenerateCode, kind: state.KindAction, next: StageSaveCode},
	{name: StageEditCode, kind: state.KindAction, next: StageSaveCode},
	{name: StageGenerateText, kind: state.KindAction, next: StageSaveText},
	{name: StageEditText, kind: state.KindAction, next: StageSaveText},
	{name: StageSaveCode, kind: state.KindAction, next: state.End},
	{name: StageSaveText, kind: state.KindAction, next: state.End},
}

// Stages returns the names of every stage Build requires, in topology order.
func Stages() []string {
	names := make([]string, len(topology))
	for i, s := range topology {
		names[i] = s.name
	}
	return names
}

// Build assembles the routing graph from reg. The query key is write-once
// and next is ephemeral; opts are applied after those policies.
func Build(reg *Registry, cfg config.GraphConfig, opts ...state.Option) (*state.Graph, error) {
	actions := make(map[string]state.ActionNode)
	decisions := make(map[string]state.DecisionNode)

	for _, s := range topology {
		var err error
		switch s.kind {
		case state.KindAction:
			actions[s.name], err = reg.Action(s.name)
		case state.KindDecision:
			decisions[s.name], err = reg.Decision(s.name)
		}

		if errors.Is(err, ErrNotFound) {
			return nil, &MissingImplementationError{Stage: s.name}
		}
		if err != nil {
			return nil, err
		}
	}

	policies := []state.Option{
		state.WithWriteOnce(KeyQuery),
		state.WithEphemeral(KeyNext),
	}

	b, err := state.NewBuilder(cfg, append(policies, opts...)...)
	if err != nil {
		return nil, err
	}

	for _, s := range topology {
		switch s.kind {
		case state.KindAction:
			err = b.AddAction(s.name, actions[s.name])
		case state.KindDecision:
			err = b.AddDecision(s.name, decisions[s.name], s.routes, s.fallback)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, s := range topology {
		if s.kind != state.KindAction {
			continue
		}
		if err := b.AddEdge(s.name, s.next); err != nil {
			return nil, err
		}
	}

	if err := b.SetEntryPoint(StageRouter); err != nil {
		return nil, err
	}

	return b.Build()
}

// NewState seeds a run with the raw input under the query key.
func NewState(input string, observer observability.Observer) state.State {
	s := state.New(observer)
	s.Data[KeyQuery] = input
	return s
}

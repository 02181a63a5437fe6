package state

import "context"

// End is the implicit terminal target of fixed edges and routes.
const End = "__end__"

// ActionNode is a stage that produces a partial state update.
type ActionNode interface {
	Execute(ctx context.Context, state State) (Update, error)
}

// DecisionNode is a stage that selects the next stage by label. It cannot
// modify state.
type DecisionNode interface {
	Decide(ctx context.Context, state State) (string, error)
}

// ActionFunc adapts a function to ActionNode.
type ActionFunc func(ctx context.Context, state State) (Update, error)

func (f ActionFunc) Execute(ctx context.Context, state State) (Update, error) {
	return f(ctx, state)
}

// DecisionFunc adapts a function to DecisionNode.
type DecisionFunc func(ctx context.Context, state State) (string, error)

func (f DecisionFunc) Decide(ctx context.Context, state State) (string, error) {
	return f(ctx, state)
}

// PassThrough is an action that changes nothing.
var PassThrough ActionNode = ActionFunc(func(context.Context, State) (Update, error) {
	return nil, nil
})

// Routes maps decision labels to target stage names.
type Routes map[string]string

// Kind distinguishes the two stage types.
type Kind string

const (
	KindAction   Kind = "action"
	KindDecision Kind = "decision"
)

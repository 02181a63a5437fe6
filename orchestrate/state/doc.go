// Package state executes directed graphs of named stages over an immutable
// key-value State.
//
// A graph is made of two kinds of stage that cannot be confused with each
// other:
//
//   - ActionNode computes a partial Update from the current State. The
//     executor merges the update and follows the stage's single fixed edge.
//   - DecisionNode returns a routing label. The executor looks the label up in
//     the stage's Routes table and moves on without touching State.
//
// Graphs are assembled with a Builder and validated once by Build: unknown
// targets, missing edges, invalid fallbacks and cycles are rejected before
// any run starts. The resulting Graph is immutable and safe to share across
// concurrent runs, each of which owns its own State.
//
//	b, err := state.NewBuilder(config.DefaultGraphConfig("demo"))
//	b.AddDecision("route", classify, state.Routes{"a": "left", "b": "right"}, "a")
//	b.AddAction("left", left)
//	b.AddAction("right", right)
//	b.AddEdge("left", state.End)
//	b.AddEdge("right", state.End)
//	b.SetEntryPoint("route")
//	g, err := b.Build()
//	final, err := g.Execute(ctx, state.New(nil).Set("input", "..."))
//
// # Merge policy
//
// Updates merge last-write-wins per key. Keys registered with WithWriteOnce
// are only written while their current value is empty, and keys registered
// with WithEphemeral are dropped from updates before merging.
//
// # Checkpoints
//
// With checkpointing enabled the executor saves State after every N action
// stages through a CheckpointStore. Resume continues a run from the fixed
// edge of the last checkpointed action.
package state

// Package router wires the request-routing graph: a top-level decision that
// classifies input as a question, code or text request, sub-decisions that
// separate generating from editing, language-model-backed handlers, and save
// stages that persist generated output as files.
//
// Stages are looked up in an explicit Registry when the graph is built. A
// required stage that was never registered fails Build with a
// *MissingImplementationError naming it.
//
//	reg := router.NewDefaultRegistry(classifier, generator, store)
//	graph, err := router.Build(reg, config.DefaultGraphConfig("router"))
//	final, err := graph.Execute(ctx, router.NewState("write a sort in go", observer))
package router

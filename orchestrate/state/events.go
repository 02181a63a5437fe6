package state

import "github.com/tailored-agentic-units/router/observability"

const (
	EventGraphStart    observability.EventType = "graph.start"
	EventGraphComplete observability.EventType = "graph.complete"
	EventGraphFailed   observability.EventType = "graph.failed"

	EventNodeStart    observability.EventType = "node.start"
	EventNodeComplete observability.EventType = "node.complete"
	EventNodeState    observability.EventType = "node.state"

	EventDecisionRoute    observability.EventType = "decision.route"
	EventDecisionFallback observability.EventType = "decision.fallback"
	EventEdgeTransition   observability.EventType = "edge.transition"

	EventKeyDropped   observability.EventType = "state.key.dropped"
	EventKeyProtected observability.EventType = "state.key.protected"

	EventCheckpointSave   observability.EventType = "checkpoint.save"
	EventCheckpointLoad   observability.EventType = "checkpoint.load"
	EventCheckpointResume observability.EventType = "checkpoint.resume"
	EventCheckpointDelete observability.EventType = "checkpoint.delete"
)

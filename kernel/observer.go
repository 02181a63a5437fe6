package kernel

import "github.com/tailored-agentic-units/router/observability"

// Kernel event types emitted around each invocation.
const (
	EventInvokeStart    observability.EventType = "kernel.invoke.start"
	EventInvokeComplete observability.EventType = "kernel.invoke.complete"
	EventInvokeError    observability.EventType = "kernel.invoke.error"
	EventBatchComplete  observability.EventType = "kernel.batch.complete"
)

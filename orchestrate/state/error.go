package state

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName        = errors.New("stage name cannot be empty")
	ErrNilNode          = errors.New("stage implementation cannot be nil")
	ErrDuplicateStage   = errors.New("stage already exists")
	ErrReservedName     = errors.New("stage name is reserved")
	ErrUnknownStage     = errors.New("unknown stage")
	ErrNoEntryPoint     = errors.New("entry point not set")
	ErrMissingEdge      = errors.New("action stage has no outgoing edge")
	ErrDuplicateEdge    = errors.New("action stage already has an outgoing edge")
	ErrEdgeFromDecision = errors.New("decision stages route by label, not by fixed edge")
	ErrEmptyRoutes      = errors.New("decision stage has no routes")
	ErrInvalidFallback  = errors.New("fallback label is not a route")
	ErrCycle            = errors.New("graph contains a cycle")
	ErrMaxIterations    = errors.New("max iterations exceeded")
	ErrCheckpointing    = errors.New("checkpointing not enabled")
	ErrRunComplete      = errors.New("run already complete")
)

// ExecutionError carries the context of a failed run: the stage that failed,
// the state it received and the path taken to reach it.
type ExecutionError struct {
	NodeName string
	State    State
	Path     []string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at node %s: %v", e.NodeName, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

package state

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/router/observability"
)

// Update is the partial result of an action stage.
type Update map[string]any

// State is the record threaded through one run. Every method that changes it
// returns a new State; the receiver is never modified.
//
// RunID, CheckpointNode and Timestamp identify the run for checkpointing.
// Observer travels with the state so stages can emit their own events.
type State struct {
	Data           map[string]any         `json:"data"`
	Observer       observability.Observer `json:"-"`
	RunID          string                 `json:"run_id"`
	CheckpointNode string                 `json:"checkpoint_node"`
	Timestamp      time.Time              `json:"timestamp"`
}

// New returns an empty State with a fresh run id. A nil observer is replaced
// with NoOpObserver.
func New(observer observability.Observer) State {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return State{
		Data:      make(map[string]any),
		Observer:  observer,
		RunID:     uuid.NewString(),
		Timestamp: time.Now(),
	}
}

// Clone copies the data map. Values are shared.
func (s State) Clone() State {
	data := maps.Clone(s.Data)
	if data == nil {
		data = make(map[string]any)
	}

	return State{
		Data:           data,
		Observer:       s.Observer,
		RunID:          s.RunID,
		CheckpointNode: s.CheckpointNode,
		Timestamp:      s.Timestamp,
	}
}

func (s State) Get(key string) (any, bool) {
	val, exists := s.Data[key]
	return val, exists
}

// String returns the value at key when it is a string, or "".
func (s State) String(key string) string {
	str, _ := s.Data[key].(string)
	return str
}

// Set returns a copy of s with key set to value.
func (s State) Set(key string, value any) State {
	next := s.Clone()
	next.Data[key] = value
	return next
}

// Merge copies every key of update into a copy of s. Existing keys are
// overwritten and no key is ever removed.
func (s State) Merge(update Update) State {
	next := s.Clone()
	maps.Copy(next.Data, update)
	return next
}

// Subject probes keys in order and returns the first string value that is
// not blank. It returns "" when none qualifies.
func (s State) Subject(keys ...string) string {
	for _, key := range keys {
		if str := s.String(key); strings.TrimSpace(str) != "" {
			return str
		}
	}
	return ""
}

// Keys returns the data keys in sorted order.
func (s State) Keys() []string {
	return slices.Sorted(maps.Keys(s.Data))
}

// Snapshot returns an independent copy of the data map.
func (s State) Snapshot() map[string]any {
	return maps.Clone(s.Data)
}

// SetCheckpointNode records node as the last completed action and refreshes
// the timestamp.
func (s State) SetCheckpointNode(node string) State {
	next := s.Clone()
	next.CheckpointNode = node
	next.Timestamp = time.Now()
	return next
}

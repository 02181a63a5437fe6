package state

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint exists for a
// run id.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore persists State snapshots keyed by RunID so an interrupted
// run can be resumed. Implementations must be safe for concurrent use.
type CheckpointStore interface {
	// Save overwrites any existing checkpoint for state.RunID.
	Save(ctx context.Context, state State) error

	// Load returns ErrCheckpointNotFound when runID has no checkpoint.
	Load(ctx context.Context, runID string) (State, error)

	// Delete is a no-op for unknown run ids.
	Delete(ctx context.Context, runID string) error

	List(ctx context.Context) ([]string, error)
}

type memoryCheckpointStore struct {
	states map[string]State
	mu     sync.RWMutex
}

// NewMemoryCheckpointStore keeps checkpoints in process memory. It is
// registered as "memory".
func NewMemoryCheckpointStore() CheckpointStore {
	return &memoryCheckpointStore{
		states: make(map[string]State),
	}
}

func (m *memoryCheckpointStore) Save(ctx context.Context, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[state.RunID] = state.Clone()
	return nil
}

func (m *memoryCheckpointStore) Load(ctx context.Context, runID string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.states[runID]
	if !exists {
		return State{}, fmt.Errorf("%w: %s", ErrCheckpointNotFound, runID)
	}
	return state.Clone(), nil
}

func (m *memoryCheckpointStore) Delete(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, runID)
	return nil
}

func (m *memoryCheckpointStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.states)), nil
}

var (
	checkpointStores = map[string]CheckpointStore{
		"memory": NewMemoryCheckpointStore(),
	}
	mutex sync.RWMutex
)

// GetCheckpointStore resolves a store registered under name.
func GetCheckpointStore(name string) (CheckpointStore, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	store, exists := checkpointStores[name]
	if !exists {
		return nil, fmt.Errorf("unknown checkpoint store: %s", name)
	}
	return store, nil
}

// RegisterCheckpointStore adds or replaces a named store. Register before
// building graphs whose configuration names it.
func RegisterCheckpointStore(name string, store CheckpointStore) {
	mutex.Lock()
	defer mutex.Unlock()

	checkpointStores[name] = store
}

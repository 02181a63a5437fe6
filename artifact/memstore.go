package artifact

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps artifacts in process. Locations are the slash-separated
// keys a FileStore would use relative to its root.
type MemoryStore struct {
	mu     sync.RWMutex
	files  map[string][]byte
	perRun bool
	err    error
}

// NewMemoryStore creates an empty MemoryStore. With perRun set, runs are
// keyed under their run id.
func NewMemoryStore(perRun bool) *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte), perRun: perRun}
}

// FailWith makes subsequent saves fail with err wrapped in ErrSaveFailed.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) Save(_ context.Context, a Artifact) (string, error) {
	k, err := key(a, m.perRun)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSaveFailed, k, m.err)
	}

	m.files[k] = slices.Clone(a.Data)
	return k, nil
}

func (m *MemoryStore) Load(_ context.Context, location string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[location]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	return slices.Clone(data), nil
}

func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.files)), nil
}

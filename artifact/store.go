// Package artifact persists the files a run produces. Stores are stateless:
// each Save performs its I/O directly and reports where the data landed.
package artifact

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tailored-agentic-units/router/observability"
)

const EventSaved observability.EventType = "artifact.saved"

// Artifact is one file produced by a run.
type Artifact struct {
	RunID string
	Name  string
	Data  []byte
}

// Store persists artifacts and returns the location written.
type Store interface {
	Save(ctx context.Context, a Artifact) (string, error)
	Load(ctx context.Context, location string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

// ValidateName rejects names that could escape the store root.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %s contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// key is the slash-separated location of a within a store.
func key(a Artifact, perRun bool) (string, error) {
	if err := ValidateName(a.Name); err != nil {
		return "", err
	}
	if !perRun || a.RunID == "" {
		return a.Name, nil
	}
	if err := ValidateName(a.RunID); err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	return path.Join(a.RunID, a.Name), nil
}

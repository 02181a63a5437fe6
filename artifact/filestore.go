package artifact

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tailored-agentic-units/router/observability"
)

// FileStore writes artifacts beneath a root directory. Writes go through a
// temporary file and a rename, so readers never observe partial content.
type FileStore struct {
	root     string
	perRun   bool
	observer observability.Observer
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithPerRun places each run's artifacts in <root>/<runID>/.
func WithPerRun() Option {
	return func(s *FileStore) {
		s.perRun = true
	}
}

// WithObserver receives an artifact.saved event per write.
func WithObserver(observer observability.Observer) Option {
	return func(s *FileStore) {
		s.observer = observer
	}
}

func NewFileStore(root string, opts ...Option) *FileStore {
	if root == "" {
		root = "."
	}
	s := &FileStore{root: root, observer: observability.NoOpObserver{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory artifacts are written under.
func (s *FileStore) Root() string {
	return s.root
}

// PerRun reports whether runs are isolated in their own directories.
func (s *FileStore) PerRun() bool {
	return s.perRun
}

func (s *FileStore) Save(ctx context.Context, a Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSaveFailed, a.Name, err)
	}

	k, err := key(a, s.perRun)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	target := filepath.Join(s.root, filepath.FromSlash(k))
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSaveFailed, k, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSaveFailed, k, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %s: %v", ErrSaveFailed, k, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %s: %v", ErrSaveFailed, k, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %s: %v", ErrSaveFailed, k, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %s: %v", ErrSaveFailed, k, err)
	}

	observability.Emit(ctx, s.observer, EventSaved, observability.LevelInfo, "artifact", map[string]any{
		"path":   target,
		"run_id": a.RunID,
		"bytes":  len(a.Data),
	})

	return target, nil
}

// Load reads a location previously returned by Save.
func (s *FileStore) Load(_ context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return data, nil
}

// List walks the root and returns every artifact path, sorted. Hidden files
// and directories are skipped.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == s.root {
				return fs.SkipAll
			}
			return err
		}

		if p != s.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}

	slices.Sort(paths)
	return paths, nil
}

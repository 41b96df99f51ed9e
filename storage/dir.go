package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeDir is returned when the artifacts root would contain the
// working directory.
var ErrUnsafeDir = errors.New("unsafe artifacts directory")

// Dir is the directory collecting the artifacts of a run.
type Dir struct {
	root string
	path string
}

// PrepareDir creates the directory of the run runID below root and
// returns it. Nothing is removed: runs sharing root, such as the test
// binaries of one go test invocation, each keep their own directory.
//
// A root that is the working directory, one of its ancestors or the
// filesystem root is refused with ErrUnsafeDir.
func PrepareDir(root, runID string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving artifacts directory %q: %w", root, err)
	}
	if err := checkRoot(abs); err != nil {
		return nil, err
	}
	if runID == "" || runID != filepath.Base(runID) || runID == "." || runID == ".." {
		return nil, fmt.Errorf("invalid run id %q for artifacts directory %q", runID, abs)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifacts directory %q: %w", abs, err)
	}
	path := filepath.Join(abs, runID)
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating run artifacts directory %q: %w", path, err)
	}
	return &Dir{root: abs, path: path}, nil
}

func checkRoot(abs string) error {
	if filepath.Dir(abs) == abs {
		return fmt.Errorf("%w: %q is the filesystem root", ErrUnsafeDir, abs)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	rel, err := filepath.Rel(abs, wd)
	if err != nil {
		return nil //nolint:nilerr // different volumes
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return fmt.Errorf("%w: %q contains the working directory %q", ErrUnsafeDir, abs, wd)
}

// Root returns the absolute path shared by all runs.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the absolute path of the directory of the run.
func (d *Dir) Path() string {
	return d.path
}

// Join returns the path of name inside the directory.
func (d *Dir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// Persister returns a persister writing inside the directory.
func (d *Dir) Persister() *LocalFilePersister {
	return &LocalFilePersister{Root: d.path}
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FilePersister will persist files. It abstracts away the where and how of
// writing artifact files to their destination.
type FilePersister interface {
	Persist(ctx context.Context, path string, data io.Reader) error
}

// LocalFilePersister will persist files to the local disk. When Root is
// set, relative paths are resolved against it and paths escaping it
// are refused.
type LocalFilePersister struct {
	Root string
}

// Persist will write the contents of data to the local disk on the specified path.
func (l *LocalFilePersister) Persist(ctx context.Context, path string, data io.Reader) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	cp, err := l.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(cp)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating a local directory %q: %w", dir, err)
	}

	f, err := os.OpenFile(cp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating a local file %q: %w", cp, err)
	}
	defer func() {
		tempErr := f.Close()
		// Only return the close error if there isn't already an existing error.
		if tempErr != nil && err == nil {
			err = fmt.Errorf("closing the local file %q: %w", cp, tempErr)
		}
	}()

	if _, err = io.Copy(f, data); err != nil {
		return fmt.Errorf("writing the local file %q: %w", cp, err)
	}

	return nil
}

func (l *LocalFilePersister) resolve(path string) (string, error) {
	cp := filepath.Clean(path)
	if l.Root == "" {
		return cp, nil
	}

	root := filepath.Clean(l.Root)
	if !filepath.IsAbs(cp) {
		cp = filepath.Join(root, cp)
	}
	rel, err := filepath.Rel(root, cp)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside of %q", path, root)
	}
	return cp, nil
}

// Package storage provides the shared uploaded-file store backed by local
// disk. Concurrent uploads are independent because every stored file gets a
// generated unique name.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes and removes attachment files under a single directory.
type Store struct {
	dir string
}

// New ensures the upload directory exists and returns a Store for it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the upload directory, for static file serving.
func (s *Store) Dir() string { return s.dir }

// Save streams src into a new file named <uuid><ext> and returns the stored
// filename. Only the extension of the original name is kept; the rest is
// discarded so client-supplied names can never traverse paths.
func (s *Store) Save(originalName string, src io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(filepath.Base(originalName))

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Removal is best-effort cleanup: a file that is
// already gone is not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

// Package filesystem serves and stores files under a single root directory.
package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound = errors.New("filesystem: file not found")
	ErrInvalidPath  = errors.New("filesystem: invalid path")
)

// Filesystem is the file service the files route depends on.
type Filesystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, content []byte) error
}

// Store reads and writes plain files directly inside root. Names are single path
// elements; nested paths and "." or ".." are rejected with ErrInvalidPath.
type Store struct {
	root string
}

// NewStore roots a Store at root, or at the working directory when root is empty.
func NewStore(root string) *Store {
	if root == "" {
		root = "."
	}
	return &Store{root: root}
}

// WriteFile creates or truncates root/name and writes content to it. The root directory must
// already exist.
func (store *Store) WriteFile(name string, content []byte) error {
	path, err := store.path(name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("filesystem: write %s: %w", name, err)
	}

	return nil
}

// ReadFile returns the contents of root/name with a single trailing newline removed.
func (store *Store) ReadFile(name string) ([]byte, error) {
	path, err := store.path(name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		return nil, fmt.Errorf("filesystem: read %s: %w", name, err)
	}

	return bytes.TrimSuffix(content, []byte("\n")), nil
}

func (store *Store) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	return filepath.Join(store.root, name), nil
}

// ContentType picks the response media type for a served file.
func ContentType(name string) string {
	if strings.HasSuffix(name, ".html") {
		return "text/html"
	}
	return "application/octet-stream"
}

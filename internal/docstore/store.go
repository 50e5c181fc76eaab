// Package docstore reads the plain-text source documents that retrieval
// re-chunks on demand. Chunk text is never persisted; the directory of
// extracted texts is the single source of truth.
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store serves documents from a directory, keyed by filename.
type Store struct {
	dir string
}

// New creates a store over the given directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// ReadDocument returns the full text of the named document. Names are bare
// filenames; anything that resolves outside the corpus directory is refused.
func (s *Store) ReadDocument(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid document name: %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return string(data), nil
}

// List returns the names of all .txt documents in the corpus, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Dir returns the corpus directory path.
func (s *Store) Dir() string { return s.dir }

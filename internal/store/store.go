// Package store persists the planner document as a single JSON file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kingrea/academic-planner/internal/planner"
)

// DocumentStore loads and saves the whole planner document.
type DocumentStore interface {
	Load() (planner.Document, error)
	Save(planner.Document) error
}

// Store keeps the planner document at a fixed path.
type Store struct {
	path string
}

// New creates a store backed by path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file yields an empty document.
func (s *Store) Load() (planner.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return planner.NewDocument(), nil
		}
		return planner.Document{}, fmt.Errorf("store: read %s: %w: %w", s.path, planner.ErrIO, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return planner.Document{}, fmt.Errorf("store: %s: %w", s.path, err)
	}
	return doc, nil
}

// Save writes the full document to a temp file and renames it into place,
// so readers see either the previous or the new content.
func (s *Store) Save(doc planner.Document) error {
	encoded, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: ensure dir: %w: %w", planner.ErrIO, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp: %w: %w", planner.ErrIO, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(encoded); err != nil {
		return fmt.Errorf("store: write temp: %w: %w", planner.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: sync temp: %w: %w", planner.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w: %w", planner.ErrIO, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("store: chmod temp: %w: %w", planner.ErrIO, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("store: replace %s: %w: %w", s.path, planner.ErrIO, err)
	}
	committed = true
	return nil
}

// Encode renders the document the way it is stored on disk.
func Encode(doc planner.Document) ([]byte, error) {
	doc.Normalize()
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists the whole ledger document. Every ledger operation calls
// Load once and, on success, Save once.
type Store interface {
	Load() (Document, error)
	Save(Document) error
}

// Migrator is implemented by stores that can hold documents written in an
// older shape and rewrite them in place.
type Migrator interface {
	Migrate() (changed bool, err error)
}

// JSONStore keeps the ledger as a single JSON document on disk.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path. The file is
// created on first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) read() ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(s.path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return data, nil
}

// Load reads and decodes the document. A missing file is an empty ledger.
// Books still in the legacy shape are migrated in memory.
func (s *JSONStore) Load() (Document, error) {
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	doc, _, err := MigrateJSON(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return doc, nil
}

// Save writes the full document through a temp file in the same directory.
func (s *JSONStore) Save(doc Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Migrate rewrites the file in the current shape if any book was stored in
// the legacy shape. A missing or blank file is left alone.
func (s *JSONStore) Migrate() (bool, error) {
	data, err := s.read()
	if err != nil {
		return false, err
	}
	doc, changed, err := MigrateJSON(data)
	if err != nil {
		return false, fmt.Errorf("migrate %s: %w", s.path, err)
	}
	if !changed {
		return false, nil
	}
	return true, s.Save(doc)
}

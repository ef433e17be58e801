// Package jsonfile provides a single-file implementation of the
// storage.Store interface: the whole state is one JSON array of group
// records, exactly the persisted contract shape. Writes go through a temp
// file and rename so a crash never leaves a half-written state file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmynk/tanda/internal/models"
	"github.com/mmynk/tanda/internal/storage"
)

// Ensure FileStore implements storage.Store
var _ storage.Store = (*FileStore)(nil)

// FileStore implements storage.Store using one JSON file.
type FileStore struct {
	path string
}

// New creates a FileStore at the given path, creating parent directories.
// The file itself is only created on the first Save.
func New(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads and validates the group list. A missing file is an empty store.
func (s *FileStore) Load(_ context.Context) ([]models.Group, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []models.Group{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var groups []models.Group
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("corrupt state file %s: %w", s.path, err)
	}
	for i := range groups {
		if err := groups[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid group record in %s: %w", s.path, err)
		}
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// Save writes the full group list atomically.
func (s *FileStore) Save(_ context.Context, groups []models.Group) error {
	if groups == nil {
		groups = []models.Group{}
	}
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal groups: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tanda-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open between operations.
func (s *FileStore) Close() error {
	return nil
}

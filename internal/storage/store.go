// Package storage provides abstractions for persistent group-state storage.
package storage

import (
	"context"

	"github.com/mmynk/tanda/internal/models"
)

// Store persists the full list of group snapshots. Persistence is
// write-through and best-effort: the service saves the whole list after each
// successful command and keeps its in-memory state even if the save fails.
//
// This abstraction allows swapping storage backends (SQLite, a plain JSON
// file, etc.) without changing the service layer.
type Store interface {
	// Load returns every saved group. An empty store yields an empty
	// slice, not an error. Implementations validate each snapshot and
	// fail the load on a corrupt record.
	Load(ctx context.Context) ([]models.Group, error)

	// Save replaces the stored state with the given groups.
	Save(ctx context.Context, groups []models.Group) error

	// Close releases any resources held by the store.
	Close() error
}

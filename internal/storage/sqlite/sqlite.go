// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface. Each group is stored as a single JSON document in
// the shape of the persisted contract, so the same record can round-trip
// through the JSON-file backend unchanged.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tanda/internal/models"
	"github.com/mmynk/tanda/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads every saved group, unmarshals its JSON document, and validates
// it. A record that fails to parse or validate fails the whole load.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, data FROM groups ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}

		var g models.Group
		if err := json.Unmarshal([]byte(data), &g); err != nil {
			return nil, fmt.Errorf("corrupt group record %s: %w", id, err)
		}
		if g.ID != id {
			return nil, fmt.Errorf("group record %s holds document for %s", id, g.ID)
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("invalid group record %s: %w", id, err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// Save upserts every group and prunes records for groups no longer present,
// all in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, groups []models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	keep := make(map[string]bool, len(groups))
	for i := range groups {
		g := &groups[i]
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("failed to marshal group %s: %w", g.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO groups (id, data, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			g.ID, string(data), now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert group %s: %w", g.ID, err)
		}
		keep[g.ID] = true
	}

	rows, err := tx.QueryContext(ctx, "SELECT id FROM groups")
	if err != nil {
		return fmt.Errorf("failed to list stored groups: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan stored group id: %w", err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate stored group ids: %w", err)
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete group %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

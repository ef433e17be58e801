package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/tanda/internal/cycle"
	"github.com/mmynk/tanda/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testGroup(t *testing.T, name string) models.Group {
	t.Helper()
	g, err := cycle.CreateGroup(name, 100, []models.Member{
		{Name: "Amara"}, {Name: "Bola"}, {Name: "Chidi"},
	}, nil)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return g
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Load on empty store yields empty slice", func(t *testing.T) {
		groups, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if groups == nil || len(groups) != 0 {
			t.Errorf("expected empty slice, got %v", groups)
		}
	})

	t.Run("Save and Load round-trips groups", func(t *testing.T) {
		a := testGroup(t, "Alpha")
		b := testGroup(t, "Beta")

		if err := store.Save(ctx, []models.Group{a, b}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		groups, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		byID := map[string]models.Group{}
		for _, g := range groups {
			byID[g.ID] = g
		}
		got, ok := byID[a.ID]
		if !ok {
			t.Fatalf("group %s missing after round trip", a.ID)
		}
		if got.Name != "Alpha" || got.Status != models.StatusPending || len(got.Members) != 3 {
			t.Errorf("group lost data: %+v", got)
		}
		if len(got.Rounds) != 1 || len(got.Rounds[0].Payments) != 3 {
			t.Errorf("round state lost: %+v", got.Rounds)
		}
	})

	t.Run("Save updates existing and prunes deleted", func(t *testing.T) {
		a := testGroup(t, "Alpha")
		b := testGroup(t, "Beta")
		if err := store.Save(ctx, []models.Group{a, b}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		// Advance a's state, drop b entirely.
		var err error
		for _, m := range a.Members {
			if a, err = cycle.RecordPayment(a, m.ID); err != nil {
				t.Fatalf("RecordPayment failed: %v", err)
			}
		}
		if err := store.Save(ctx, []models.Group{a}); err != nil {
			t.Fatalf("second Save failed: %v", err)
		}

		groups, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("expected 1 group after prune, got %d", len(groups))
		}
		if groups[0].ID != a.ID {
			t.Errorf("wrong survivor: %s", groups[0].ID)
		}
		if got := groups[0].Rounds[0].PayoutMemberID; got != a.PayoutOrder[0] {
			t.Errorf("updated state not persisted: recipient %q", got)
		}
	})
}

func TestSQLiteStore_RejectsCorruptRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx,
		"INSERT INTO groups (id, data, updated_at) VALUES (?, ?, ?)",
		"bad", `{"id":"bad","name":"X"}`, 0,
	)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if _, err := store.Load(ctx); err == nil {
		t.Error("expected Load to fail on an invalid record")
	}
}

func TestSQLiteStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}

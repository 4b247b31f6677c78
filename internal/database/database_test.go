package database

import (
	"path/filepath"
	"testing"
)

func TestDefaultPathOverride(t *testing.T) {
	t.Cleanup(ResetPath)

	path := filepath.Join(t.TempDir(), "studysync.db")
	SetPath(path)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if got != path {
		t.Fatalf("DefaultPath = %q, want %q", got, path)
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studysync.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion error: %v", err)
	}
	if version != 3 {
		t.Errorf("schema version = %d, want 3", version)
	}
}

func TestMigrate_RecreatesMissingIndexes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studysync.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	// Simulate a database from before the index migration.
	if _, err := db.Exec(`DROP INDEX idx_actions_resource_id`); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_migrations SET version = 1`); err != nil {
		t.Fatalf("reset version: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close()

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_actions_resource_id'`).Scan(&n)
	if err != nil {
		t.Fatalf("query index: %v", err)
	}
	if n != 1 {
		t.Errorf("expected idx_actions_resource_id to be recreated, found %d", n)
	}
}

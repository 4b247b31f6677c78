package actionstore

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eduplanner/studysync/internal/database"
	"eduplanner/studysync/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("database.Open failed: %v", err)
	}
	return db
}

func tempRepo(t *testing.T) *SQLiteStore {
	t.Helper()
	db := openDB(t, filepath.Join(t.TempDir(), "studysync.db"))
	t.Cleanup(func() { db.Close() })
	return New(db)
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newAction(id, resource string, offset time.Duration) domain.Action {
	return domain.Action{
		ID:              id,
		Type:            domain.ActionStartResource,
		ResourceID:      resource,
		Payload:         domain.Payload{"note": "hello"},
		ClientTimestamp: base.Add(offset),
		CreatedAt:       base.Add(offset),
	}
}

func ids(actions []domain.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ID
	}
	return out
}

// storeCases runs the same behaviour checks against every Store.
func storeCases(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("PutAndAll", func(t *testing.T) {
		s := open(t)
		want := newAction("a1", "s1", 0)
		last := base.Add(time.Minute)
		want.RetryCount = 2
		want.LastAttemptAt = &last

		if err := s.Put(ctx, want); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := s.All(ctx)
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if diff := cmp.Diff([]domain.Action{want}, got); diff != "" {
			t.Errorf("All mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		s := open(t)
		a := newAction("a1", "s1", 0)
		if err := s.Put(ctx, a); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		a.RetryCount = 1
		now := base.Add(time.Second)
		a.LastAttemptAt = &now
		if err := s.Put(ctx, a); err != nil {
			t.Fatalf("Put update failed: %v", err)
		}

		n, err := s.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if n != 1 {
			t.Fatalf("Count = %d, want 1", n)
		}
		got, _ := s.All(ctx)
		if got[0].RetryCount != 1 || got[0].LastAttemptAt == nil || !got[0].LastAttemptAt.Equal(now) {
			t.Errorf("update not persisted: %+v", got[0])
		}
	})

	t.Run("OrderByCreatedAtThenInsertion", func(t *testing.T) {
		s := open(t)
		for _, a := range []domain.Action{
			newAction("late", "s1", 2*time.Second),
			newAction("tie-1", "s1", time.Second),
			newAction("tie-2", "s2", time.Second),
			newAction("early", "s2", 0),
		} {
			if err := s.Put(ctx, a); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}

		got, err := s.All(ctx)
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if diff := cmp.Diff([]string{"early", "tie-1", "tie-2", "late"}, ids(got)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}

		byRes, err := s.ByResource(ctx, "s2")
		if err != nil {
			t.Fatalf("ByResource failed: %v", err)
		}
		if diff := cmp.Diff([]string{"early", "tie-2"}, ids(byRes)); diff != "" {
			t.Errorf("ByResource mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("DeleteUnknownIsNoop", func(t *testing.T) {
		s := open(t)
		if err := s.Put(ctx, newAction("a1", "s1", 0)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := s.Delete(ctx, "missing"); err != nil {
			t.Fatalf("Delete unknown: %v", err)
		}
		if err := s.Delete(ctx, "a1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if n, _ := s.Count(ctx); n != 0 {
			t.Errorf("Count = %d, want 0", n)
		}
	})

	t.Run("DeleteCreatedBefore", func(t *testing.T) {
		s := open(t)
		for _, a := range []domain.Action{
			newAction("old-1", "s1", -48*time.Hour),
			newAction("old-2", "s2", -25*time.Hour),
			newAction("fresh", "s1", 0),
		} {
			if err := s.Put(ctx, a); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}

		expired, err := s.DeleteCreatedBefore(ctx, base.Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("DeleteCreatedBefore failed: %v", err)
		}
		if diff := cmp.Diff([]string{"old-1", "old-2"}, ids(expired)); diff != "" {
			t.Errorf("expired mismatch (-want +got):\n%s", diff)
		}
		rest, _ := s.All(ctx)
		if diff := cmp.Diff([]string{"fresh"}, ids(rest)); diff != "" {
			t.Errorf("remaining mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSQLiteStore(t *testing.T) {
	storeCases(t, func(t *testing.T) Store { return tempRepo(t) })
}

func TestMemoryStore(t *testing.T) {
	storeCases(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "studysync.db")

	db := openDB(t, path)
	if err := New(db).Put(ctx, newAction("a1", "s1", 0)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	db.Close()

	db = openDB(t, path)
	defer db.Close()
	s := New(db)

	got, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a1"}, ids(got)); diff != "" {
		t.Errorf("after reopen (-want +got):\n%s", diff)
	}
	if !s.Durable() {
		t.Error("SQLite store should report durable")
	}
}

func TestMemoryStore_IsolatesCallerMutation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := newAction("a1", "s1", 0)
	if err := s.Put(ctx, a); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	a.Payload["note"] = "changed"

	got, _ := s.All(ctx)
	if got[0].Payload.String("note") != "hello" {
		t.Errorf("stored payload was mutated: %v", got[0].Payload)
	}
	if s.Durable() {
		t.Error("memory store should not report durable")
	}
}

func TestOpenOrFallback(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("durable", func(t *testing.T) {
		s, db := OpenOrFallback(ctx, filepath.Join(t.TempDir(), "studysync.db"), logger)
		if db == nil {
			t.Fatal("expected a database handle")
		}
		defer db.Close()
		if !s.Durable() {
			t.Fatal("expected durable store")
		}
		if n, err := s.Count(ctx); err != nil || n != 0 {
			t.Errorf("probe left rows behind: n=%d err=%v", n, err)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
			t.Fatalf("write blocker: %v", err)
		}

		s, db := OpenOrFallback(ctx, filepath.Join(blocker, "sub", "studysync.db"), logger)
		if db != nil {
			t.Fatal("expected no database handle on fallback")
		}
		if s.Durable() {
			t.Fatal("expected in-memory fallback")
		}
		if err := s.Put(ctx, newAction("a1", "s1", 0)); err != nil {
			t.Fatalf("fallback Put failed: %v", err)
		}
	})
}

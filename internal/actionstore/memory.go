package actionstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eduplanner/studysync/internal/database"
	"eduplanner/studysync/internal/domain"
)

// MemoryStore is the in-process fallback used when the SQLite database
// cannot be opened. Its contents are lost on exit.
type MemoryStore struct {
	mu      sync.Mutex
	actions map[string]memEntry
	seq     int64
}

type memEntry struct {
	action domain.Action
	seq    int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{actions: make(map[string]memEntry)}
}

func (m *MemoryStore) Put(_ context.Context, a domain.Action) error {
	if a.ID == "" {
		return fmt.Errorf("actionstore: action id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a = cloneAction(a)
	if existing, ok := m.actions[a.ID]; ok {
		m.actions[a.ID] = memEntry{action: a, seq: existing.seq}
		return nil
	}
	m.seq++
	m.actions[a.ID] = memEntry{action: a, seq: m.seq}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.actions, id)
	return nil
}

func (m *MemoryStore) All(_ context.Context) ([]domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(domain.Action) bool { return true }), nil
}

func (m *MemoryStore) ByResource(_ context.Context, resourceID string) ([]domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a domain.Action) bool { return a.ResourceID == resourceID }), nil
}

func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.actions), nil
}

func (m *MemoryStore) DeleteCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := m.sorted(func(a domain.Action) bool { return a.CreatedAt.Before(cutoff) })
	for _, a := range expired {
		delete(m.actions, a.ID)
	}
	return expired, nil
}

// Durable reports false.
func (m *MemoryStore) Durable() bool { return false }

func (m *MemoryStore) Close() error { return nil }

// sorted must be called with mu held.
func (m *MemoryStore) sorted(keep func(domain.Action) bool) []domain.Action {
	entries := make([]memEntry, 0, len(m.actions))
	for _, e := range m.actions {
		if keep(e.action) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.action.CreatedAt.Equal(b.action.CreatedAt) {
			return a.action.CreatedAt.Before(b.action.CreatedAt)
		}
		return a.seq < b.seq
	})

	if len(entries) == 0 {
		return nil
	}
	out := make([]domain.Action, len(entries))
	for i, e := range entries {
		out[i] = cloneAction(e.action)
	}
	return out
}

// cloneAction copies the parts of an action that callers could mutate.
func cloneAction(a domain.Action) domain.Action {
	if a.Payload != nil {
		p := make(domain.Payload, len(a.Payload))
		for k, v := range a.Payload {
			p[k] = v
		}
		a.Payload = p
	} else {
		a.Payload = domain.Payload{}
	}
	if a.LastAttemptAt != nil {
		t := *a.LastAttemptAt
		a.LastAttemptAt = &t
	}
	return a
}

// OpenOrFallback opens the database at path and verifies the action
// table accepts writes. The returned handle is shared with the SQLite
// store and owned by the caller. On any failure it logs a warning and
// returns a MemoryStore with a nil handle, so callers always get a usable
// Store and can check Durable.
func OpenOrFallback(ctx context.Context, path string, logger *slog.Logger) (Store, *sql.DB) {
	db, err := database.Open(path)
	if err == nil {
		if err = New(db).probe(ctx); err == nil {
			return New(db), db
		}
		_ = db.Close()
	}
	if logger != nil {
		logger.Warn("durable storage unavailable, pending actions will not survive a restart",
			"path", path, "err", err)
	}
	return NewMemoryStore(), nil
}

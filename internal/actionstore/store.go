// Package actionstore provides durable local storage for deferred actions.
//
// When the client is offline (or the remote side fails transiently) the
// action is persisted here so it survives a restart and can be replayed
// once connectivity returns.
//
// Storage is backed by a SQLite database at ~/.config/studysync/studysync.db
// (or the platform-equivalent path returned by os.UserConfigDir). When that
// database cannot be opened the process falls back to MemoryStore and
// reports itself as running without durability.
package actionstore

import (
	"context"
	"time"

	"eduplanner/studysync/internal/domain"
)

// Store defines the persistence interface for pending actions.
type Store interface {
	// Put inserts or replaces the action with the same ID.
	Put(ctx context.Context, action domain.Action) error

	// Delete removes the action with the given ID. Deleting an unknown ID
	// is not an error.
	Delete(ctx context.Context, id string) error

	// All returns every pending action ordered by CreatedAt ascending,
	// insertion order breaking ties.
	All(ctx context.Context) ([]domain.Action, error)

	// ByResource returns the pending actions targeting resourceID, in the
	// same order as All.
	ByResource(ctx context.Context, resourceID string) ([]domain.Action, error)

	// Count returns the number of pending actions.
	Count(ctx context.Context) (int, error)

	// DeleteCreatedBefore removes actions created before cutoff and
	// returns them.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Action, error)

	// Durable reports whether the store survives a process restart.
	Durable() bool

	// Close releases storage resources.
	Close() error
}

// Package synclog keeps a history of actions the queue has settled:
// delivered, rejected, given up on, or expired.
package synclog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eduplanner/studysync/internal/database"
	"eduplanner/studysync/internal/queue"
)

// tsLayout is fixed width so timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository defines the persistence interface for history entries.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	ListByResource(ctx context.Context, resourceID string, limit int) ([]Entry, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRepository implements Repository backed by the local SQLite database.
type SQLiteRepository struct {
	db     *sql.DB
	ownsDB bool
}

// New wraps an already migrated database handle shared with other stores.
func New(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Open creates or opens the history at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("synclog: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("synclog: %w", err)
	}
	return &SQLiteRepository{db: db, ownsDB: true}, nil
}

// Save inserts a new entry.
func (r *SQLiteRepository) Save(ctx context.Context, entry *Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
        INSERT INTO sync_log (timestamp, action_id, type, resource_id, outcome, attempts, detail)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(tsLayout), entry.ActionID, entry.Type, entry.ResourceID,
		entry.Outcome, entry.Attempts, SanitizeDetail(entry.Detail),
	)
	if err != nil {
		return fmt.Errorf("synclog: insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("synclog: failed to get last insert ID: %w", err)
	}
	entry.ID = id
	return nil
}

// Record implements queue.Recorder.
func (r *SQLiteRepository) Record(ctx context.Context, s queue.Settlement) error {
	entry := &Entry{
		Timestamp:  s.SettledAt,
		ActionID:   s.Action.ID,
		Type:       string(s.Action.Type),
		ResourceID: s.Action.ResourceID,
		Outcome:    string(s.Outcome),
		Attempts:   attempts(s),
	}
	if s.Err != nil {
		entry.Detail = s.Err.Error()
	}
	return r.Save(ctx, entry)
}

// attempts counts executor calls, including the one that settled it.
func attempts(s queue.Settlement) int {
	switch s.Outcome {
	case queue.OutcomeSucceeded, queue.OutcomeTerminal:
		return s.Action.RetryCount + 1
	default:
		return s.Action.RetryCount
	}
}

// List returns the most recent n entries.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, timestamp, action_id, type, resource_id, outcome, attempts, detail
        FROM sync_log ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("synclog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// ListByResource returns the most recent n entries for one session or room.
func (r *SQLiteRepository) ListByResource(ctx context.Context, resourceID string, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, timestamp, action_id, type, resource_id, outcome, attempts, detail
        FROM sync_log WHERE resource_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("synclog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Prune deletes entries older than the given duration.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(tsLayout)
	result, err := r.db.ExecContext(ctx, `DELETE FROM sync_log WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("synclog: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources when the repository opened them.
func (r *SQLiteRepository) Close() error {
	if !r.ownsDB {
		return nil
	}
	return r.db.Close()
}

func scanRows(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var timestampStr string
		err := rows.Scan(
			&entry.ID, &timestampStr, &entry.ActionID, &entry.Type, &entry.ResourceID,
			&entry.Outcome, &entry.Attempts, &entry.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("synclog: scan failed: %w", err)
		}
		entry.Timestamp, _ = time.Parse(tsLayout, timestampStr)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

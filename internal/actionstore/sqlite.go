package actionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"eduplanner/studysync/internal/domain"
)

// SQLiteStore implements Store backed by the local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New wraps an already migrated database handle. The caller keeps
// ownership of db.
func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectColumns = `id, type, resource_id, payload, client_ts, created_at, retry_count, last_attempt_at`

// Put inserts a new action or replaces the mutable columns of an
// existing one. The insertion sequence of an existing row is preserved.
func (s *SQLiteStore) Put(ctx context.Context, a domain.Action) error {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return fmt.Errorf("actionstore: encode payload for %s: %w", a.ID, err)
	}
	if a.Payload == nil {
		payload = []byte("{}")
	}

	var lastAttempt sql.NullInt64
	if a.LastAttemptAt != nil {
		lastAttempt = sql.NullInt64{Int64: a.LastAttemptAt.UnixNano(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO actions (id, type, resource_id, payload, client_ts, created_at, retry_count, last_attempt_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			resource_id = excluded.resource_id,
			payload = excluded.payload,
			client_ts = excluded.client_ts,
			created_at = excluded.created_at,
			retry_count = excluded.retry_count,
			last_attempt_at = excluded.last_attempt_at`,
		a.ID, string(a.Type), a.ResourceID, string(payload),
		a.ClientTimestamp.UnixNano(), a.CreatedAt.UnixNano(), a.RetryCount, lastAttempt,
	)
	if err != nil {
		return fmt.Errorf("actionstore: put %s failed: %w", a.ID, err)
	}
	return nil
}

// Delete removes an action by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM actions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("actionstore: delete %s failed: %w", id, err)
	}
	return nil
}

// All returns every pending action, oldest first.
func (s *SQLiteStore) All(ctx context.Context) ([]domain.Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM actions ORDER BY created_at ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("actionstore: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// ByResource returns the pending actions for one resource, oldest first.
func (s *SQLiteStore) ByResource(ctx context.Context, resourceID string) ([]domain.Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM actions WHERE resource_id = ? ORDER BY created_at ASC, seq ASC`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("actionstore: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Count returns the number of pending actions.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("actionstore: count failed: %w", err)
	}
	return n, nil
}

// DeleteCreatedBefore removes and returns actions created before cutoff.
func (s *SQLiteStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Action, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("actionstore: begin sweep: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM actions WHERE created_at < ? ORDER BY created_at ASC, seq ASC`, cutoff.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("actionstore: sweep query failed: %w", err)
	}
	expired, err := scanRows(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM actions WHERE created_at < ?`, cutoff.UnixNano()); err != nil {
		return nil, fmt.Errorf("actionstore: sweep delete failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("actionstore: sweep commit failed: %w", err)
	}
	return expired, nil
}

// Durable reports true: rows survive a restart.
func (s *SQLiteStore) Durable() bool { return true }

// Close is a no-op: the database handle belongs to whoever opened it.
func (s *SQLiteStore) Close() error { return nil }

// probe verifies that the store can be written to and read back.
func (s *SQLiteStore) probe(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("actionstore: probe: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO actions (id, type, created_at) VALUES ('__probe__', 'probe', 0)`); err != nil {
		return fmt.Errorf("actionstore: probe write: %w", err)
	}
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE id = '__probe__'`).Scan(&n); err != nil {
		return fmt.Errorf("actionstore: probe read: %w", err)
	}
	return nil
}

// scanRows scans multiple rows into actions.
func scanRows(rows *sql.Rows) ([]domain.Action, error) {
	var actions []domain.Action
	for rows.Next() {
		var (
			a           domain.Action
			typ         string
			payload     string
			clientTS    int64
			createdAt   int64
			lastAttempt sql.NullInt64
		)
		err := rows.Scan(&a.ID, &typ, &a.ResourceID, &payload, &clientTS, &createdAt, &a.RetryCount, &lastAttempt)
		if err != nil {
			return nil, fmt.Errorf("actionstore: scan failed: %w", err)
		}
		a.Type = domain.ActionType(typ)
		if err := json.Unmarshal([]byte(payload), &a.Payload); err != nil {
			return nil, fmt.Errorf("actionstore: decode payload for %s: %w", a.ID, err)
		}
		if a.Payload == nil {
			a.Payload = domain.Payload{}
		}
		a.ClientTimestamp = time.Unix(0, clientTS).UTC()
		a.CreatedAt = time.Unix(0, createdAt).UTC()
		if lastAttempt.Valid {
			t := time.Unix(0, lastAttempt.Int64).UTC()
			a.LastAttemptAt = &t
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

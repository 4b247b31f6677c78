// Package cache remembers the last server-confirmed state of each study
// session so a presumed state can be shown while offline.
//
// Entries are JSON files under <UserCacheDir>/studysync/state, written
// atomically via a temp file and rename.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eduplanner/studysync/internal/domain"
)

// DefaultTTL bounds how long a confirmed state is trusted.
const DefaultTTL = 7 * 24 * time.Hour

// Confirmed is the last state the server acknowledged for a resource.
type Confirmed struct {
	ResourceID  string               `json:"resource_id"`
	State       domain.ResourceState `json:"state"`
	ConfirmedAt time.Time            `json:"confirmed_at"`
}

// Cache is a file-backed store of confirmed states.
type Cache struct {
	dir string
	ttl time.Duration
}

// New returns a cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{dir: dir, ttl: DefaultTTL}
}

// NewDefault returns a cache rooted at the OS user cache dir.
func NewDefault() *Cache {
	return New(defaultDir())
}

// Get returns the confirmed state for resourceID. Missing, expired and
// unreadable entries are misses.
func (c *Cache) Get(resourceID string) (Confirmed, bool, error) {
	if c == nil || c.dir == "" {
		return Confirmed{}, false, nil
	}

	path := c.pathForKey(resourceID)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Confirmed{}, false, nil
		}
		return Confirmed{}, false, fmt.Errorf("cache: %w", err)
	}

	if c.ttl > 0 && time.Now().After(info.ModTime().Add(c.ttl)) {
		_ = os.Remove(path)
		return Confirmed{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Confirmed{}, false, fmt.Errorf("cache: %w", err)
	}
	var entry Confirmed
	if err := json.Unmarshal(data, &entry); err != nil || entry.ResourceID != resourceID {
		return Confirmed{}, false, nil
	}
	return entry, true, nil
}

// Set records state as confirmed for resourceID. An older confirmation
// never overwrites a newer one.
func (c *Cache) Set(resourceID string, state domain.ResourceState, at time.Time) error {
	if c == nil || c.dir == "" {
		return nil
	}
	if existing, ok, _ := c.Get(resourceID); ok && existing.ConfirmedAt.After(at) {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	payload, err := json.Marshal(Confirmed{ResourceID: resourceID, State: state, ConfirmedAt: at.UTC()})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, sanitizeKey(resourceID)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: %w", err)
	}

	return os.Rename(tmpName, c.pathForKey(resourceID))
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(resourceID string) error {
	if c == nil || c.dir == "" {
		return nil
	}

	err := os.Remove(c.pathForKey(resourceID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if c == nil || c.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (c *Cache) pathForKey(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

func defaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "studysync", "state")
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "resource"
	}

	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

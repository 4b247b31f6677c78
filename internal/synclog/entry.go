package synclog

import "time"

// Entry is one settled action: something the queue removed from the
// pending store, and why.
type Entry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ActionID   string    `json:"action_id"`
	Type       string    `json:"type"`
	ResourceID string    `json:"resource_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Attempts   int       `json:"attempts"`
	Detail     string    `json:"detail,omitempty"`
}

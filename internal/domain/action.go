package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"eduplanner/studysync/internal/util"
)

// ActionType identifies the kind of deferred operation. The set is closed:
// every value must have an executor and a lane.
type ActionType string

const (
	ActionStartResource    ActionType = "start_resource"
	ActionPauseResource    ActionType = "pause_resource"
	ActionResumeResource   ActionType = "resume_resource"
	ActionCompleteResource ActionType = "complete_resource"
	ActionSendMessage      ActionType = "send_message"
)

// ActionTypes lists every known action type in a stable order.
var ActionTypes = []ActionType{
	ActionStartResource,
	ActionPauseResource,
	ActionResumeResource,
	ActionCompleteResource,
	ActionSendMessage,
}

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	for _, known := range ActionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseActionType normalizes s and returns the matching action type.
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(util.NormalizeKey(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownActionType, s)
	}
	return t, nil
}

// Payload is an opaque map of primitive values owned by the executor of
// the action's type.
type Payload map[string]any

// String returns the payload value for key, or "" when it is absent or
// not a string.
func (p Payload) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Action is a persisted record of a deferred state-mutating operation.
type Action struct {
	// ID is a globally unique identifier. It never changes and is used as
	// the idempotency key towards the remote side.
	ID string `json:"id"`

	// Type selects the executor and the queue lane.
	Type ActionType `json:"type"`

	// ResourceID is the domain entity the action targets, e.g. a study
	// session id or a chat room id.
	ResourceID string `json:"resource_id"`

	// Payload is opaque to the queue.
	Payload Payload `json:"payload,omitempty"`

	// ClientTimestamp is when the user triggered the action.
	ClientTimestamp time.Time `json:"client_timestamp"`

	// CreatedAt is the local insertion time and defines the requested
	// (not guaranteed) drain order.
	CreatedAt time.Time `json:"created_at"`

	// RetryCount counts retryable failures.
	RetryCount int `json:"retry_count"`

	// LastAttemptAt is the time of the last failed attempt, nil if the
	// action has never been attempted.
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
}

// NormalizePayload round-trips p through JSON so that values built in
// memory have the same shape as values read back from storage (numbers
// become float64, nested maps become map[string]any).
func NormalizePayload(p Payload) (Payload, error) {
	if len(p) == 0 {
		return Payload{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	var out Payload
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return out, nil
}

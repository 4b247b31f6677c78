package queue

import (
	"time"

	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/retry"
)

// Lane holds the retry rules for one family of action types.
type Lane struct {
	// MaxRetries is the number of retryable failures after which an
	// action is given up.
	MaxRetries int

	// Backoff sets the minimum wait between attempts.
	Backoff retry.Policy

	// HeadOfLine makes a failed or backing-off action hold back every
	// later action of the same type and resource for the rest of a pass.
	HeadOfLine bool
}

// DefaultLane is used for session actions and any type without its own
// lane.
func DefaultLane() Lane {
	return Lane{
		MaxRetries: 5,
		Backoff:    retry.DefaultPolicy(),
	}
}

// MessageLane is used for chat messages: fewer retries, shorter waits and
// strict per-room order.
func MessageLane() Lane {
	return Lane{
		MaxRetries: 3,
		Backoff: retry.Policy{
			BaseDelay: time.Second,
			MaxDelay:  30 * time.Second,
			Jitter:    0.1,
		},
		HeadOfLine: true,
	}
}

// DefaultLanes returns the per-type lanes used in production.
func DefaultLanes() map[domain.ActionType]Lane {
	return map[domain.ActionType]Lane{
		domain.ActionSendMessage: MessageLane(),
	}
}

package queue

import (
	"context"
	"time"

	"eduplanner/studysync/internal/domain"
)

// Outcome says why an action left the queue.
type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeTerminal   Outcome = "terminal"
	OutcomeExhausted  Outcome = "exhausted"
	OutcomeUnroutable Outcome = "unroutable"
	OutcomeExpired    Outcome = "expired"
)

// Settlement describes an action the processor removed from the store.
type Settlement struct {
	Action    domain.Action
	Outcome   Outcome
	Err       error
	SettledAt time.Time
}

// Recorder receives every settlement. Errors are logged, never fatal.
type Recorder interface {
	Record(ctx context.Context, s Settlement) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, s Settlement) error

func (f RecorderFunc) Record(ctx context.Context, s Settlement) error { return f(ctx, s) }

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Settlement) error { return nil }

// MultiRecorder fans a settlement out to every recorder and returns the
// first error.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, s Settlement) error {
	var first error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

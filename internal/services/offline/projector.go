package offline

import (
	"context"
	"fmt"
	"time"

	"eduplanner/studysync/internal/cache"
	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/queue"
)

// Project returns the state a resource is presumed to be in: the state
// implied by the newest pending action that changes state, or confirmed
// when there is none.
func Project(confirmed domain.ResourceState, pending []domain.Action) domain.ResourceState {
	state := confirmed
	var latest time.Time
	found := false
	for _, a := range pending {
		implied, ok := domain.ImpliedState(a.Type)
		if !ok {
			continue
		}
		if !found || !a.CreatedAt.Before(latest) {
			state = implied
			latest = a.CreatedAt
			found = true
		}
	}
	return state
}

// Presumed is the projected view of one session.
type Presumed struct {
	ResourceID string
	State      domain.ResourceState
	Confirmed  domain.ResourceState
	Pending    []domain.Action
}

// Syncing reports whether the presumed state still waits on the server.
func (p Presumed) Syncing() bool { return len(p.Pending) > 0 }

// PresumedState combines the last confirmed state with pending actions.
func (s *Service) PresumedState(ctx context.Context, resourceID string) (Presumed, error) {
	confirmed := domain.StateUnknown
	if entry, ok, err := s.states.Get(resourceID); err != nil {
		s.logger.Warn("read confirmed state failed", "resource", resourceID, "err", err)
	} else if ok {
		confirmed = entry.State
	}

	pending, err := s.queue.Pending(ctx, queue.Filter{ResourceID: resourceID})
	if err != nil {
		return Presumed{}, fmt.Errorf("offline: %w", err)
	}

	return Presumed{
		ResourceID: resourceID,
		State:      Project(confirmed, pending),
		Confirmed:  confirmed,
		Pending:    pending,
	}, nil
}

// StateRecorder updates the confirmed-state cache when the queue delivers
// a session action.
type StateRecorder struct {
	states *cache.Cache
}

// NewStateRecorder returns a queue.Recorder writing to states.
func NewStateRecorder(states *cache.Cache) *StateRecorder {
	return &StateRecorder{states: states}
}

func (r *StateRecorder) Record(_ context.Context, s queue.Settlement) error {
	if s.Outcome != queue.OutcomeSucceeded {
		return nil
	}
	state, ok := domain.ImpliedState(s.Action.Type)
	if !ok {
		return nil
	}
	return r.states.Set(s.Action.ResourceID, state, s.SettledAt)
}

package domain

// ResourceState is the display state of a timed study session.
type ResourceState string

const (
	StateUnknown   ResourceState = ""
	StateIdle      ResourceState = "idle"
	StateRunning   ResourceState = "running"
	StatePaused    ResourceState = "paused"
	StateCompleted ResourceState = "completed"
)

// ImpliedState returns the state a resource is presumed to be in once an
// action of type t has landed. ok is false for types that do not change
// session state (e.g. message sends).
func ImpliedState(t ActionType) (state ResourceState, ok bool) {
	switch t {
	case ActionStartResource, ActionResumeResource:
		return StateRunning, true
	case ActionPauseResource:
		return StatePaused, true
	case ActionCompleteResource:
		return StateCompleted, true
	default:
		return StateUnknown, false
	}
}

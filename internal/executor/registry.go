// Package executor maps action types to the functions that perform them
// against the remote side.
package executor

import (
	"context"
	"sort"
	"sync"
	"time"

	"eduplanner/studysync/internal/domain"
)

// Request is what an executor receives for one attempt of an action.
type Request struct {
	// ActionID doubles as the idempotency key: replaying the same ID must
	// not apply the effect twice.
	ActionID        string
	Type            domain.ActionType
	ResourceID      string
	Payload         domain.Payload
	ClientTimestamp time.Time
}

// RequestFor builds the executor request for a stored action.
func RequestFor(a domain.Action) Request {
	return Request{
		ActionID:        a.ID,
		Type:            a.Type,
		ResourceID:      a.ResourceID,
		Payload:         a.Payload,
		ClientTimestamp: a.ClientTimestamp,
	}
}

// Executor performs one attempt of an action. It must be idempotent with
// respect to Request.ActionID and should wrap failures with
// domain.Retryable or domain.Terminal.
type Executor func(ctx context.Context, req Request) error

// Registry holds one executor per action type. It is safe for concurrent
// use.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.ActionType]Executor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[domain.ActionType]Executor)}
}

// Register binds fn to t, replacing any previous executor for t.
// It panics on a nil executor (a programmer error detected at startup).
func (r *Registry) Register(t domain.ActionType, fn Executor) {
	if fn == nil {
		panic("executor: nil executor for " + string(t))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[t] = fn
}

// Lookup returns the executor bound to t.
func (r *Registry) Lookup(t domain.ActionType) (Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.executors[t]
	return fn, ok
}

// Types returns the registered action types, sorted.
func (r *Registry) Types() []domain.ActionType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.ActionType, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

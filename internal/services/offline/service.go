// Package offline is the entry point for state-changing user actions. It
// calls the remote side directly when it can and falls back to the
// durable queue when it cannot.
package offline

import (
	"context"
	"fmt"
	"log/slog"

	"eduplanner/studysync/internal/cache"
	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/executor"
	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/retry"
	"eduplanner/studysync/internal/util"
)

// Outcome is what happened to a submitted action.
type Outcome string

const (
	// OutcomeSucceeded means the remote side applied the action.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeQueued means the action was persisted for later delivery.
	OutcomeQueued Outcome = "queued"
	// OutcomeFailed means the action was rejected and will not be retried.
	OutcomeFailed Outcome = "failed"
)

// Result describes a submission. Err carries the executor failure for
// failed results and the retryable cause for results queued after a
// direct attempt.
type Result struct {
	Outcome Outcome
	Action  domain.Action
	Err     error
}

// Service submits actions. It is safe for concurrent use.
type Service struct {
	queue    *queue.Manager
	network  queue.Network
	registry *executor.Registry
	states   *cache.Cache
	clock    queue.Clock
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStateCache records confirmed session states in c.
func WithStateCache(c *cache.Cache) Option {
	return func(s *Service) { s.states = c }
}

// WithClock overrides the clock used to stamp direct attempts.
func WithClock(c queue.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service on top of q.
func NewService(q *queue.Manager, network queue.Network, registry *executor.Registry, opts ...Option) *Service {
	s := &Service{
		queue:    q,
		network:  network,
		registry: registry,
		clock:    queue.RealClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "offline")
	return s
}

func (s *Service) StartSession(ctx context.Context, sessionID string) (Result, error) {
	return s.Submit(ctx, domain.ActionStartResource, sessionID, nil)
}

func (s *Service) PauseSession(ctx context.Context, sessionID string) (Result, error) {
	return s.Submit(ctx, domain.ActionPauseResource, sessionID, nil)
}

func (s *Service) ResumeSession(ctx context.Context, sessionID string) (Result, error) {
	return s.Submit(ctx, domain.ActionResumeResource, sessionID, nil)
}

func (s *Service) CompleteSession(ctx context.Context, sessionID string) (Result, error) {
	return s.Submit(ctx, domain.ActionCompleteResource, sessionID, nil)
}

// Submit performs an action of type t on resourceID.
//
// Offline, or while earlier actions for the same resource are still
// pending, the action is queued so per-resource order is kept. Otherwise
// the executor is called directly: a retryable failure queues the same
// action, a terminal failure is reported and dropped.
//
// The returned error is non-nil only for invalid input or when the action
// could not be persisted and so may be lost.
func (s *Service) Submit(ctx context.Context, t domain.ActionType, resourceID string, payload domain.Payload) (Result, error) {
	if err := util.ValidateResourceID(resourceID); err != nil {
		return Result{}, fmt.Errorf("offline: %w", err)
	}
	a, err := s.queue.NewAction(t, resourceID, payload)
	if err != nil {
		return Result{}, fmt.Errorf("offline: %w", err)
	}

	if !s.network.IsOnline() {
		return s.enqueue(ctx, a, nil)
	}
	if s.hasPending(ctx, resourceID) {
		s.logger.Debug("earlier actions pending, queueing behind them", "resource", resourceID, "type", t)
		return s.enqueue(ctx, a, nil)
	}

	exec, ok := s.registry.Lookup(t)
	if !ok {
		return Result{Outcome: OutcomeFailed, Action: a, Err: fmt.Errorf("offline: %s: %w", t, domain.ErrNoExecutor)}, nil
	}

	execErr := exec(ctx, executor.RequestFor(a))
	if execErr != nil && ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	switch s.network.Classify(execErr) {
	case retry.None:
		s.confirm(a)
		return Result{Outcome: OutcomeSucceeded, Action: a}, nil
	case retry.Terminal:
		s.logger.Warn("action rejected", "type", t, "resource", resourceID, "err", execErr)
		return Result{Outcome: OutcomeFailed, Action: a, Err: execErr}, nil
	default:
		// The direct call was the first attempt; the drain only gets the
		// rest of the lane's budget.
		now := s.clock.Now()
		a.RetryCount = 1
		a.LastAttemptAt = &now
		s.logger.Info("direct attempt failed, queueing", "type", t, "resource", resourceID, "err", execErr)
		return s.enqueue(ctx, a, execErr)
	}
}

func (s *Service) enqueue(ctx context.Context, a domain.Action, cause error) (Result, error) {
	if err := s.queue.Enqueue(ctx, a); err != nil {
		return Result{}, fmt.Errorf("offline: action may not be durable: %w", err)
	}
	return Result{Outcome: OutcomeQueued, Action: a, Err: cause}, nil
}

func (s *Service) hasPending(ctx context.Context, resourceID string) bool {
	pending, err := s.queue.Pending(ctx, queue.Filter{ResourceID: resourceID})
	if err != nil {
		s.logger.Warn("read pending actions failed", "resource", resourceID, "err", err)
		return false
	}
	return len(pending) > 0
}

func (s *Service) confirm(a domain.Action) {
	state, ok := domain.ImpliedState(a.Type)
	if !ok {
		return
	}
	if err := s.states.Set(a.ResourceID, state, s.clock.Now()); err != nil {
		s.logger.Warn("record confirmed state failed", "resource", a.ResourceID, "err", err)
	}
}

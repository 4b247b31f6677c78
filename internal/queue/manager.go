// Package queue replays persisted actions against their executors.
//
// A Manager owns one drain loop. Each pass sweeps expired actions, then
// walks the store oldest first and, for every action whose backoff window
// has elapsed, calls the registered executor: success and terminal
// failures delete the action, retryable failures bump its retry count and
// keep it for a later pass. Only one pass runs at a time.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"eduplanner/studysync/internal/actionstore"
	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/executor"
	"eduplanner/studysync/internal/retry"

	"github.com/google/uuid"
)

// ErrDrainInProgress is returned by Drain when another pass is running.
var ErrDrainInProgress = errors.New("queue: drain already in progress")

const (
	// DefaultMaxAge is how long an action may wait before it is dropped.
	DefaultMaxAge = 24 * time.Hour

	// DefaultInterval is the idle time between periodic passes.
	DefaultInterval = 30 * time.Second
)

// Network reports connectivity and classifies executor failures.
type Network interface {
	IsOnline() bool
	Subscribe(fn func(online bool)) func()
	Classify(err error) retry.Class
}

// Status is the snapshot delivered to observers.
type Status struct {
	PendingCount int
	Processing   bool
	Online       bool
	Durable      bool
}

// DrainReport summarizes one pass.
type DrainReport struct {
	Expired   int
	Attempted int
	Succeeded int
	Retried   int
	Purged    int
	Skipped   int

	// StoppedOffline is set when the pass ended early because
	// connectivity was lost.
	StoppedOffline bool
}

// Filter narrows Pending. Zero fields match everything.
type Filter struct {
	Type       domain.ActionType
	ResourceID string
}

// Config wires a Manager.
type Config struct {
	Store    actionstore.Store
	Network  Network
	Registry *executor.Registry

	// Lanes overrides the retry rules per action type. Types not listed
	// use DefaultLane. Nil selects DefaultLanes.
	Lanes       map[domain.ActionType]Lane
	DefaultLane Lane

	MaxAge   time.Duration
	Interval time.Duration
	Clock    Clock
	Recorder Recorder
	Logger   *slog.Logger
}

// Manager is the queue processor.
type Manager struct {
	store    actionstore.Store
	network  Network
	registry *executor.Registry
	lanes    map[domain.ActionType]Lane
	fallback Lane
	maxAge   time.Duration
	interval time.Duration
	clock    Clock
	recorder Recorder
	logger   *slog.Logger

	draining atomic.Bool
	rerun    atomic.Bool
	wakeup   chan struct{}

	mu          sync.Mutex
	listeners   map[int]func(Status)
	nextID      int
	lastPending int
	lastCreated time.Time
}

// New creates a Manager. Store, Network and Registry are required.
func New(cfg Config) *Manager {
	if cfg.Store == nil || cfg.Network == nil || cfg.Registry == nil {
		panic("queue: store, network and registry are required")
	}

	configured := cfg.Lanes
	if configured == nil {
		configured = DefaultLanes()
	}
	lanes := make(map[domain.ActionType]Lane, len(configured))
	for t, l := range configured {
		lanes[t] = l
	}
	fallback := cfg.DefaultLane
	if fallback.MaxRetries <= 0 {
		fallback = DefaultLane()
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock{}
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		store:     cfg.Store,
		network:   cfg.Network,
		registry:  cfg.Registry,
		lanes:     lanes,
		fallback:  fallback,
		maxAge:    maxAge,
		interval:  interval,
		clock:     clock,
		recorder:  recorder,
		logger:    logger.With("component", "queue"),
		wakeup:    make(chan struct{}, 1),
		listeners: make(map[int]func(Status)),
	}

	// Connectivity changes reach observers whether or not Start is
	// running. The immediate call from Subscribe is not a transition.
	var subscribed atomic.Bool
	m.network.Subscribe(func(online bool) {
		if !subscribed.Load() {
			return
		}
		if online {
			m.Trigger()
		}
		m.notify(context.Background())
	})
	subscribed.Store(true)

	return m
}

// Lane returns the retry rules for t.
func (m *Manager) Lane(t domain.ActionType) Lane {
	if l, ok := m.lanes[t]; ok {
		return l
	}
	return m.fallback
}

// NextAttempt returns when a stored action becomes eligible again. The
// zero time means it is eligible now.
func (m *Manager) NextAttempt(a domain.Action) time.Time {
	return m.Lane(a.Type).Backoff.NextAttempt(a.ID, a.RetryCount, a.LastAttemptAt)
}

// NewAction builds a fresh action with a unique ID. CreatedAt is strictly
// increasing across calls on the same Manager so insertion order survives
// clock ties.
func (m *Manager) NewAction(t domain.ActionType, resourceID string, payload domain.Payload) (domain.Action, error) {
	if !t.Valid() {
		return domain.Action{}, fmt.Errorf("queue: %w: %q", domain.ErrUnknownActionType, t)
	}
	normalized, err := domain.NormalizePayload(payload)
	if err != nil {
		return domain.Action{}, fmt.Errorf("queue: %w", err)
	}

	now := m.clock.Now()
	m.mu.Lock()
	created := now
	if !created.After(m.lastCreated) {
		created = m.lastCreated.Add(time.Nanosecond)
	}
	m.lastCreated = created
	m.mu.Unlock()

	return domain.Action{
		ID:              uuid.NewString(),
		Type:            t,
		ResourceID:      resourceID,
		Payload:         normalized,
		ClientTimestamp: now,
		CreatedAt:       created,
	}, nil
}

// Enqueue persists a and, when online, wakes the drain loop. A storage
// failure is returned to the caller: the action is not queued.
func (m *Manager) Enqueue(ctx context.Context, a domain.Action) error {
	if a.ID == "" {
		return fmt.Errorf("queue: action id is required")
	}
	if err := m.store.Put(ctx, a); err != nil {
		return fmt.Errorf("queue: enqueue %s: %w: %w", a.ID, domain.ErrStorageUnavailable, err)
	}
	m.logger.Debug("action queued", "id", a.ID, "type", a.Type, "resource", a.ResourceID)

	m.notify(ctx)
	if m.network.IsOnline() {
		m.Trigger()
	}
	return nil
}

// Trigger asks the run loop for a pass. Triggers that arrive while a pass
// is running collapse into a single follow-up pass.
func (m *Manager) Trigger() {
	select {
	case m.wakeup <- struct{}{}:
	default:
	}
}

// Pending returns stored actions matching f, oldest first.
func (m *Manager) Pending(ctx context.Context, f Filter) ([]domain.Action, error) {
	var (
		actions []domain.Action
		err     error
	)
	if f.ResourceID != "" {
		actions, err = m.store.ByResource(ctx, f.ResourceID)
	} else {
		actions, err = m.store.All(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("queue: list pending: %w", err)
	}
	if f.Type == "" {
		return actions, nil
	}

	filtered := actions[:0]
	for _, a := range actions {
		if a.Type == f.Type {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// Status returns the current snapshot. A failing store count keeps the
// last known pending count.
func (m *Manager) Status(ctx context.Context) Status {
	n, err := m.store.Count(ctx)

	m.mu.Lock()
	if err != nil {
		m.logger.Warn("count pending actions failed", "err", err)
		n = m.lastPending
	} else {
		m.lastPending = n
	}
	m.mu.Unlock()

	return Status{
		PendingCount: n,
		Processing:   m.draining.Load(),
		Online:       m.network.IsOnline(),
		Durable:      m.store.Durable(),
	}
}

// Subscribe registers fn for status changes. It is called immediately
// with the current status. The returned func removes it.
func (m *Manager) Subscribe(fn func(Status)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	fn(m.Status(context.Background()))

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) notify(ctx context.Context) {
	m.mu.Lock()
	if len(m.listeners) == 0 {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	status := m.Status(ctx)

	m.mu.Lock()
	listeners := make([]func(Status), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
}

// Start runs the drain loop until ctx is done: one pass immediately, then
// on every trigger, reconnect, and after each idle interval.
func (m *Manager) Start(ctx context.Context) error {
	m.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.wakeup:
			m.run(ctx)
		case <-m.clock.After(m.interval):
			m.run(ctx)
		}
	}
}

func (m *Manager) run(ctx context.Context) {
	report, err := m.Drain(ctx)
	switch {
	case errors.Is(err, ErrDrainInProgress):
		m.rerun.Store(true)
		if !m.draining.Load() && m.rerun.Swap(false) {
			m.Trigger()
		}
	case err != nil && ctx.Err() == nil:
		m.logger.Error("drain failed", "err", err)
	case report.Attempted > 0 || report.Expired > 0 || report.Purged > 0:
		m.logger.Info("drain finished",
			"attempted", report.Attempted,
			"succeeded", report.Succeeded,
			"retried", report.Retried,
			"purged", report.Purged,
			"expired", report.Expired,
			"skipped", report.Skipped,
		)
	}
}

// Drain runs one pass synchronously. It returns ErrDrainInProgress if a
// pass is already running.
func (m *Manager) Drain(ctx context.Context) (DrainReport, error) {
	if !m.draining.CompareAndSwap(false, true) {
		return DrainReport{}, ErrDrainInProgress
	}
	defer func() {
		m.draining.Store(false)
		m.notify(context.Background())
		if m.rerun.Swap(false) {
			m.Trigger()
		}
	}()
	m.notify(ctx)

	var report DrainReport

	cutoff := m.clock.Now().Add(-m.maxAge)
	expired, err := m.store.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		m.logger.Warn("expiry sweep failed", "err", err)
	}
	for _, a := range expired {
		report.Expired++
		m.logger.Warn("dropping expired action", "id", a.ID, "type", a.Type, "created_at", a.CreatedAt)
		m.record(ctx, a, OutcomeExpired, nil)
	}

	actions, err := m.store.All(ctx)
	if err != nil {
		m.logger.Error("read pending actions failed", "err", err)
		return report, fmt.Errorf("queue: %w", err)
	}

	// Head-of-line lanes block by type and resource.
	blocked := make(map[string]bool)

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !m.network.IsOnline() {
			report.StoppedOffline = true
			m.logger.Info("connectivity lost, stopping drain")
			break
		}

		lane := m.Lane(a.Type)
		key := string(a.Type) + "\x00" + a.ResourceID
		if lane.HeadOfLine && blocked[key] {
			report.Skipped++
			continue
		}

		if a.RetryCount >= lane.MaxRetries {
			m.logger.Warn("giving up on action after max retries",
				"id", a.ID, "type", a.Type, "resource", a.ResourceID, "retries", a.RetryCount)
			m.remove(ctx, a)
			m.record(ctx, a, OutcomeExhausted, nil)
			report.Purged++
			m.notify(ctx)
			continue
		}

		if !lane.Backoff.Eligible(a.ID, a.RetryCount, a.LastAttemptAt, m.clock.Now()) {
			report.Skipped++
			if lane.HeadOfLine {
				blocked[key] = true
			}
			continue
		}

		exec, ok := m.registry.Lookup(a.Type)
		if !ok {
			m.logger.Error("no executor registered, dropping action", "id", a.ID, "type", a.Type)
			m.remove(ctx, a)
			m.record(ctx, a, OutcomeUnroutable, domain.ErrNoExecutor)
			report.Purged++
			m.notify(ctx)
			continue
		}

		report.Attempted++
		execErr := exec(ctx, executor.RequestFor(a))
		if execErr != nil && ctx.Err() != nil {
			// Interrupted by shutdown: leave the action as it was.
			return report, ctx.Err()
		}

		switch m.network.Classify(execErr) {
		case retry.None:
			m.remove(ctx, a)
			m.record(ctx, a, OutcomeSucceeded, nil)
			report.Succeeded++
		case retry.Terminal:
			m.logger.Warn("action failed permanently", "id", a.ID, "type", a.Type, "err", execErr)
			m.remove(ctx, a)
			m.record(ctx, a, OutcomeTerminal, execErr)
			report.Purged++
		default:
			now := m.clock.Now()
			a.RetryCount++
			a.LastAttemptAt = &now
			if err := m.store.Put(ctx, a); err != nil {
				m.logger.Error("persist retry state failed", "id", a.ID, "err", err)
			}
			m.logger.Info("action will be retried",
				"id", a.ID, "type", a.Type, "retries", a.RetryCount, "err", execErr)
			report.Retried++
			if lane.HeadOfLine {
				blocked[key] = true
			}
		}
		m.notify(ctx)
	}

	return report, nil
}

func (m *Manager) remove(ctx context.Context, a domain.Action) {
	if err := m.store.Delete(ctx, a.ID); err != nil {
		m.logger.Error("delete action failed", "id", a.ID, "err", err)
	}
}

func (m *Manager) record(ctx context.Context, a domain.Action, outcome Outcome, cause error) {
	s := Settlement{
		Action:    a,
		Outcome:   outcome,
		Err:       cause,
		SettledAt: m.clock.Now(),
	}
	if err := m.recorder.Record(ctx, s); err != nil {
		m.logger.Warn("record settlement failed", "id", a.ID, "err", err)
	}
}

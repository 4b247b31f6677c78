// Package netmon tracks whether the remote API is reachable and tells
// interested components when that changes.
package netmon

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"eduplanner/studysync/internal/retry"
)

const defaultProbeTimeout = 5 * time.Second

// Config configures a Monitor.
type Config struct {
	// Online is the initial state. With no probe configured the monitor
	// stays optimistic until told otherwise.
	Online bool

	// ProbeURL is requested with HEAD by Probe. Any HTTP response counts
	// as reachable.
	ProbeURL string

	// Client is used for probes. Defaults to a client with a 5s timeout.
	Client *http.Client

	Logger *slog.Logger
}

// Monitor holds the current connectivity state.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	listeners map[int]func(bool)
	nextID    int

	probeURL string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a Monitor from cfg.
func New(cfg Config) *Monitor {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: defaultProbeTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		online:    cfg.Online,
		listeners: make(map[int]func(bool)),
		probeURL:  cfg.ProbeURL,
		client:    client,
		logger:    logger.With("component", "netmon"),
	}
}

// IsOnline reports the current state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn. It is called immediately with the current state
// and again on every transition. The returned func removes it.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	online := m.online
	m.mu.Unlock()

	fn(online)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// SetOnline records a new state and notifies listeners if it changed.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	if online {
		m.logger.Info("connectivity restored")
	} else {
		m.logger.Warn("connectivity lost")
	}
	for _, fn := range listeners {
		fn(online)
	}
}

// WaitForOnline blocks until the monitor is online, timeout elapses or
// ctx is done. It returns true only when online.
func (m *Monitor) WaitForOnline(ctx context.Context, timeout time.Duration) bool {
	ch := make(chan struct{}, 1)
	unsubscribe := m.Subscribe(func(online bool) {
		if !online {
			return
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Classify decides whether err is worth retrying.
func (m *Monitor) Classify(err error) retry.Class {
	return retry.Classify(err)
}

// Probe checks reachability every interval until ctx is done. It returns
// immediately when no probe URL is configured.
func (m *Monitor) Probe(ctx context.Context, interval time.Duration) {
	if m.probeURL == "" {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.SetOnline(m.check(ctx))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Check probes once and updates the state. Without a probe URL it
// returns the current state unchanged.
func (m *Monitor) Check(ctx context.Context) bool {
	if m.probeURL == "" {
		return m.IsOnline()
	}
	online := m.check(ctx)
	m.SetOnline(online)
	return online
}

func (m *Monitor) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		m.logger.Error("invalid probe url", "url", m.probeURL, "err", err)
		return m.IsOnline()
	}
	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return m.IsOnline()
		}
		m.logger.Debug("probe failed", "url", m.probeURL, "err", err)
		return false
	}
	resp.Body.Close()
	return true
}

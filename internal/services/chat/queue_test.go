package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"eduplanner/studysync/internal/actionstore"
	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/executor"
	"eduplanner/studysync/internal/netmon"
	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/services/offline"

	"github.com/google/go-cmp/cmp"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	net      *netmon.Monitor
	registry *executor.Registry
	clock    *queue.FakeClock
	manager  *queue.Manager
	chat     *Queue
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		net:      netmon.New(netmon.Config{Online: online, Logger: logger}),
		registry: executor.NewRegistry(),
		clock:    queue.NewFakeClock(epoch),
	}
	f.manager = queue.New(queue.Config{
		Store:    actionstore.NewMemoryStore(),
		Network:  f.net,
		Registry: f.registry,
		Lanes:    queue.DefaultLanes(),
		Clock:    f.clock,
		Logger:   logger,
	})
	svc := offline.NewService(f.manager, f.net, f.registry, offline.WithClock(f.clock), offline.WithLogger(logger))
	f.chat = New(svc, f.manager)
	return f
}

// A message sent offline gets a temp id at once and leaves the room view
// after it is delivered.
func TestSend_OfflineThenDeliver(t *testing.T) {
	f := newFixture(t, false)
	var mu sync.Mutex
	var delivered []executor.Request
	f.registry.Register(domain.ActionSendMessage, func(_ context.Context, req executor.Request) error {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, req)
		return nil
	})

	sent, err := f.chat.Send(context.Background(), "room-1", "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !strings.HasPrefix(sent.TempID, TempIDPrefix) {
		t.Errorf("TempID = %q, want %q prefix", sent.TempID, TempIDPrefix)
	}
	if sent.Outcome != offline.OutcomeQueued {
		t.Errorf("outcome = %s, want queued", sent.Outcome)
	}

	pending, err := f.chat.Pending(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	want := []PendingMessage{{
		TempID:    sent.TempID,
		ActionID:  sent.Action.ID,
		Content:   "hello",
		CreatedAt: sent.Action.CreatedAt,
	}}
	if diff := cmp.Diff(want, pending); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}

	f.net.SetOnline(true)
	if _, err := f.manager.Drain(context.Background()); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	mu.Lock()
	if len(delivered) != 1 || delivered[0].ResourceID != "room-1" || delivered[0].Payload.String("temp_id") != sent.TempID {
		t.Errorf("delivered = %+v", delivered)
	}
	mu.Unlock()

	pending, _ = f.chat.Pending(context.Background(), "room-1")
	if len(pending) != 0 {
		t.Errorf("expected empty room view after delivery, got %+v", pending)
	}
}

func TestSend_OnlineDeliversDirectly(t *testing.T) {
	f := newFixture(t, true)
	f.registry.Register(domain.ActionSendMessage, func(context.Context, executor.Request) error { return nil })

	sent, err := f.chat.Send(context.Background(), "room-1", "hi")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sent.Outcome != offline.OutcomeSucceeded {
		t.Errorf("outcome = %s, want succeeded", sent.Outcome)
	}
}

func TestPending_ShowsNextAttempt(t *testing.T) {
	f := newFixture(t, true)
	f.registry.Register(domain.ActionSendMessage, func(context.Context, executor.Request) error {
		return domain.Retryable(errors.New("gateway timeout"))
	})

	sent, err := f.chat.Send(context.Background(), "room-1", "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sent.Outcome != offline.OutcomeQueued {
		t.Fatalf("outcome = %s, want queued", sent.Outcome)
	}

	pending, _ := f.chat.Pending(context.Background(), "room-1")
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	// The direct attempt was the first failure, so the window is Delay(1).
	next := pending[0].NextAttemptAt
	backoff := queue.MessageLane().Backoff
	lo := epoch.Add(backoff.Delay(1))
	hi := lo.Add(time.Duration(float64(backoff.Delay(1)) * backoff.Jitter))
	if next.Before(lo) || next.After(hi) {
		t.Errorf("NextAttemptAt = %v, want between %v and %v", next, lo, hi)
	}
}

func TestPending_MessageBehindBackingOffHeadIsNotDue(t *testing.T) {
	f := newFixture(t, false)
	failed := false
	f.registry.Register(domain.ActionSendMessage, func(context.Context, executor.Request) error {
		if !failed {
			failed = true
			return domain.Retryable(errors.New("gateway timeout"))
		}
		return nil
	})

	for _, content := range []string{"first", "second"} {
		if _, err := f.chat.Send(context.Background(), "room-1", content); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}
	f.net.SetOnline(true)
	if _, err := f.manager.Drain(context.Background()); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	pending, err := f.chat.Pending(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	head, behind := pending[0], pending[1]
	if head.RetryCount != 1 || head.NextAttemptAt.IsZero() {
		t.Fatalf("head = %+v, want one failure and a retry time", head)
	}
	if behind.RetryCount != 0 {
		t.Errorf("second message was attempted: %+v", behind)
	}
	if !behind.NextAttemptAt.Equal(head.NextAttemptAt) {
		t.Errorf("second NextAttemptAt = %v, want the head's %v", behind.NextAttemptAt, head.NextAttemptAt)
	}
}

func TestPending_FiltersByRoomAndType(t *testing.T) {
	f := newFixture(t, false)
	for _, room := range []string{"room-1", "room-2", "room-1"} {
		if _, err := f.chat.Send(context.Background(), room, "msg "+room); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	pending, err := f.chat.Pending(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending for room-1 = %d, want 2", len(pending))
	}
	if !pending[0].CreatedAt.Before(pending[1].CreatedAt) {
		t.Error("expected send order")
	}
}

func TestSend_RejectsBlankMessage(t *testing.T) {
	f := newFixture(t, true)
	if _, err := f.chat.Send(context.Background(), "room-1", "   "); err == nil {
		t.Fatal("expected error for blank message")
	}
}

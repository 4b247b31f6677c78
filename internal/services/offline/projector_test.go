package offline

import (
	"context"
	"testing"
	"time"

	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/queue"
)

func action(t domain.ActionType, offset time.Duration) domain.Action {
	return domain.Action{ID: string(t), Type: t, ResourceID: "s1", CreatedAt: epoch.Add(offset)}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name      string
		confirmed domain.ResourceState
		pending   []domain.Action
		want      domain.ResourceState
	}{
		{"nothing pending", domain.StatePaused, nil, domain.StatePaused},
		{"unknown and nothing pending", domain.StateUnknown, nil, domain.StateUnknown},
		{"single start", domain.StateIdle, []domain.Action{action(domain.ActionStartResource, 0)}, domain.StateRunning},
		{
			"latest wins",
			domain.StateIdle,
			[]domain.Action{
				action(domain.ActionPauseResource, 2*time.Second),
				action(domain.ActionStartResource, time.Second),
			},
			domain.StatePaused,
		},
		{
			"resume after pause",
			domain.StateRunning,
			[]domain.Action{
				action(domain.ActionPauseResource, time.Second),
				action(domain.ActionResumeResource, 2*time.Second),
			},
			domain.StateRunning,
		},
		{
			"messages do not change state",
			domain.StateCompleted,
			[]domain.Action{action(domain.ActionSendMessage, time.Second)},
			domain.StateCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Project(tt.confirmed, tt.pending); got != tt.want {
				t.Errorf("Project = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPresumedState(t *testing.T) {
	f := newFixture(t, false, nil)
	if err := f.states.Set("s1", domain.StatePaused, epoch); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := f.svc.ResumeSession(context.Background(), "s1"); err != nil {
		t.Fatalf("ResumeSession failed: %v", err)
	}

	p, err := f.svc.PresumedState(context.Background(), "s1")
	if err != nil {
		t.Fatalf("PresumedState failed: %v", err)
	}
	if p.State != domain.StateRunning || p.Confirmed != domain.StatePaused || !p.Syncing() {
		t.Errorf("presumed = %+v", p)
	}

	other, err := f.svc.PresumedState(context.Background(), "s2")
	if err != nil {
		t.Fatalf("PresumedState failed: %v", err)
	}
	if other.State != domain.StateUnknown || other.Syncing() {
		t.Errorf("presumed for untouched session = %+v", other)
	}
}

func TestStateRecorder_IgnoresNonSuccess(t *testing.T) {
	f := newFixture(t, true, nil)
	r := NewStateRecorder(f.states)

	err := r.Record(context.Background(), queue.Settlement{
		Action:    action(domain.ActionCompleteResource, 0),
		Outcome:   queue.OutcomeTerminal,
		SettledAt: epoch,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, ok, _ := f.states.Get("s1"); ok {
		t.Error("terminal outcome must not record a confirmed state")
	}
}

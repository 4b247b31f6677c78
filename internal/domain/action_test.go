package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseActionType(t *testing.T) {
	got, err := ParseActionType("  Pause_Resource ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ActionPauseResource {
		t.Errorf("ParseActionType = %q, want %q", got, ActionPauseResource)
	}

	if _, err := ParseActionType("reboot"); !errors.Is(err, ErrUnknownActionType) {
		t.Errorf("expected ErrUnknownActionType, got %v", err)
	}
}

func TestNormalizePayload(t *testing.T) {
	in := Payload{"content": "hello", "seconds": 90, "nested": map[string]int{"a": 1}}

	got, err := NormalizePayload(in)
	if err != nil {
		t.Fatalf("NormalizePayload failed: %v", err)
	}

	want := Payload{
		"content": "hello",
		"seconds": float64(90),
		"nested":  map[string]any{"a": float64(1)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizePayload_Empty(t *testing.T) {
	got, err := NormalizePayload(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil payload, got %#v", got)
	}
}

func TestExecError(t *testing.T) {
	base := errors.New("session already completed")

	err := Terminal(base)
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T", err)
	}
	if execErr.Retryable {
		t.Error("Terminal should not be retryable")
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped error to match base")
	}

	if Retryable(nil) != nil || Terminal(nil) != nil {
		t.Error("wrapping nil should yield nil")
	}
}

func TestImpliedState(t *testing.T) {
	tests := []struct {
		typ    ActionType
		want   ResourceState
		wantOK bool
	}{
		{ActionStartResource, StateRunning, true},
		{ActionPauseResource, StatePaused, true},
		{ActionResumeResource, StateRunning, true},
		{ActionCompleteResource, StateCompleted, true},
		{ActionSendMessage, StateUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got, ok := ImpliedState(tt.typ)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ImpliedState(%q) = (%q, %v), want (%q, %v)", tt.typ, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

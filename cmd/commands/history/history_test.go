package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eduplanner/studysync/internal/database"
	"eduplanner/studysync/internal/synclog"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	database.SetPath(filepath.Join(t.TempDir(), "studysync.db"))
	t.Cleanup(database.ResetPath)
}

func seed(t *testing.T, entries ...synclog.Entry) {
	t.Helper()
	repo, err := synclog.Open()
	if err != nil {
		t.Fatalf("synclog.Open: %v", err)
	}
	defer repo.Close()
	for i := range entries {
		if err := repo.Save(context.Background(), &entries[i]); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
}

func execHistory(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestList_Empty(t *testing.T) {
	setupTestDB(t)

	stdout, stderr := execHistory(t, "list")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "No sync history.") {
		t.Errorf("expected empty message, got: %s", stdout)
	}
}

func TestList_TableAndFilter(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()
	seed(t,
		synclog.Entry{Timestamp: now.Add(-2 * time.Minute), ActionID: "a1", Type: "start_resource", ResourceID: "algebra-1", Outcome: "succeeded", Attempts: 1},
		synclog.Entry{Timestamp: now.Add(-time.Minute), ActionID: "a2", Type: "send_message", ResourceID: "physics-101", Outcome: "exhausted", Attempts: 3, Detail: "remote: 503: maintenance"},
	)

	stdout, _ := execHistory(t, "list")
	for _, want := range []string{"algebra-1", "physics-101", "exhausted", "remote: 503: maintenance"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("list missing %q:\n%s", want, stdout)
		}
	}

	stdout, _ = execHistory(t, "list", "--resource", "algebra-1")
	if strings.Contains(stdout, "physics-101") {
		t.Errorf("filter leaked other resources:\n%s", stdout)
	}
}

func TestList_JSON(t *testing.T) {
	setupTestDB(t)
	seed(t, synclog.Entry{ActionID: "a1", Type: "pause_resource", ResourceID: "algebra-1", Outcome: "terminal", Attempts: 1})

	stdout, _ := execHistory(t, "list", "-o", "json")

	var entries []synclog.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if len(entries) != 1 || entries[0].Outcome != "terminal" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestList_InvalidLimit(t *testing.T) {
	setupTestDB(t)

	_, stderr := execHistory(t, "list", "--limit", "0")

	if !strings.Contains(stderr, "limit must be greater than 0") {
		t.Errorf("expected limit error, got: %s", stderr)
	}
}

func TestPrune(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()
	seed(t,
		synclog.Entry{Timestamp: now.Add(-72 * time.Hour), ActionID: "old", Type: "start_resource", Outcome: "succeeded"},
		synclog.Entry{Timestamp: now, ActionID: "new", Type: "start_resource", Outcome: "succeeded"},
	)

	stdout, stderr := execHistory(t, "prune", "--older-than", "2d")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Removed 1 history") {
		t.Errorf("expected one removal, got: %s", stdout)
	}
}

func TestPrune_RequiresFlag(t *testing.T) {
	setupTestDB(t)

	_, stderr := execHistory(t, "prune")

	if !strings.Contains(stderr, "--older-than is required") {
		t.Errorf("expected flag error, got: %s", stderr)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"72h", 72 * time.Hour, false},
		{"-1d", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDuration(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"eduplanner/studysync/internal/config"
	"eduplanner/studysync/internal/database"
	"eduplanner/studysync/internal/services/chat"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

func setupEnv(t *testing.T, handler http.Handler) {
	t.Helper()
	dir := t.TempDir()
	config.SetPath(filepath.Join(dir, "config.json"))
	t.Cleanup(config.ResetPath)
	database.SetPath(filepath.Join(dir, "studysync.db"))
	t.Cleanup(database.ResetPath)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	keyring.MockInit()

	apiURL := "http://127.0.0.1:1"
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		apiURL = srv.URL
	}
	t.Setenv(config.EnvAPIURL, apiURL)
}

func execChat(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	root := &cobra.Command{Use: "studysync", SilenceUsage: true}
	root.PersistentFlags().Bool("offline", false, "")
	root.AddCommand(NewCommand())

	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	root.Execute()
	return outBuf.String(), errBuf.String()
}

type messageServer struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (s *messageServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		return
	}
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func TestSend_Online(t *testing.T) {
	srv := &messageServer{}
	setupEnv(t, srv)

	stdout, stderr := execChat(t, "chat", "send", "physics-101", "--content", "hello")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Sent to physics-101 ("+chat.TempIDPrefix) {
		t.Errorf("expected sent confirmation, got: %s", stdout)
	}
	if len(srv.bodies) != 1 || srv.bodies[0]["content"] != "hello" {
		t.Errorf("bodies = %v", srv.bodies)
	}
}

func TestSend_OfflineThenPending(t *testing.T) {
	setupEnv(t, nil)

	stdout, _ := execChat(t, "--offline", "chat", "send", "physics-101", "--content", "first")
	if !strings.Contains(stdout, "Queued for physics-101") {
		t.Fatalf("expected queued message, got: %s", stdout)
	}
	execChat(t, "--offline", "chat", "send", "physics-101", "--content", "second\nline")
	execChat(t, "--offline", "chat", "send", "biology-2", "--content", "elsewhere")

	stdout, stderr := execChat(t, "--offline", "chat", "pending", "physics-101")
	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "first") || !strings.Contains(stdout, "second line") {
		t.Errorf("expected both messages, got:\n%s", stdout)
	}
	if strings.Contains(stdout, "elsewhere") {
		t.Errorf("message for another room leaked:\n%s", stdout)
	}
	if strings.Index(stdout, "first") > strings.Index(stdout, "second") {
		t.Errorf("messages out of order:\n%s", stdout)
	}
}

func TestPending_JSON(t *testing.T) {
	setupEnv(t, nil)
	execChat(t, "--offline", "chat", "send", "physics-101", "--content", "hi")

	stdout, _ := execChat(t, "--offline", "chat", "pending", "physics-101", "-o", "json")

	var messages []chat.PendingMessage
	if err := json.Unmarshal([]byte(stdout), &messages); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if len(messages) != 1 || messages[0].Content != "hi" {
		t.Errorf("messages = %+v", messages)
	}
	if !strings.HasPrefix(messages[0].TempID, chat.TempIDPrefix) {
		t.Errorf("TempID = %q", messages[0].TempID)
	}
}

func TestSend_RequiresContentWithoutTerminal(t *testing.T) {
	setupEnv(t, nil)

	_, stderr := execChat(t, "--offline", "chat", "send", "physics-101")

	if !strings.Contains(stderr, "--content is required") {
		t.Errorf("expected content error, got: %s", stderr)
	}
}

func TestPending_Empty(t *testing.T) {
	setupEnv(t, nil)

	stdout, _ := execChat(t, "--offline", "chat", "pending", "physics-101")

	if !strings.Contains(stdout, "No pending messages.") {
		t.Errorf("expected empty message, got: %s", stdout)
	}
}

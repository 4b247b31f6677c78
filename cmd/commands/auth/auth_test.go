package auth

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"eduplanner/studysync/internal/config"
	"eduplanner/studysync/internal/services/auth"
)

func setupAuth(t *testing.T) *auth.MockStore {
	t.Helper()
	config.SetPath(filepath.Join(t.TempDir(), "config.json"))
	t.Cleanup(config.ResetPath)
	t.Setenv(config.EnvAPIURL, "https://LMS.example.edu")

	store := auth.NewMockStore()
	storeFactory = func() auth.Store { return store }
	t.Cleanup(func() { storeFactory = auth.DefaultStore })
	return store
}

func execAuth(t *testing.T, stdin string, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestLogin_TokenFlag(t *testing.T) {
	store := setupAuth(t)

	stdout, stderr := execAuth(t, "", "login", "--token", " tok-1 ")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Saved token for lms.example.edu") {
		t.Errorf("unexpected output: %s", stdout)
	}
	if got, _ := store.GetToken("lms.example.edu"); got != "tok-1" {
		t.Errorf("stored token = %q", got)
	}
}

func TestLogin_Stdin(t *testing.T) {
	store := setupAuth(t)

	execAuth(t, "tok-from-pipe\n", "login")

	if got, _ := store.GetToken("lms.example.edu"); got != "tok-from-pipe" {
		t.Errorf("stored token = %q", got)
	}
}

func TestLogin_EmptyStdin(t *testing.T) {
	setupAuth(t)

	_, stderr := execAuth(t, "", "login")

	if !strings.Contains(stderr, "no token") {
		t.Errorf("expected missing token error, got: %s", stderr)
	}
}

func TestStatus(t *testing.T) {
	store := setupAuth(t)

	stdout, _ := execAuth(t, "", "status")
	if !strings.Contains(stdout, "not logged in") {
		t.Errorf("expected not logged in, got: %s", stdout)
	}

	store.SetToken("lms.example.edu", "tok")
	stdout, _ = execAuth(t, "", "status")
	if !strings.Contains(stdout, "lms.example.edu): logged in") {
		t.Errorf("expected logged in, got: %s", stdout)
	}
}

func TestLogout(t *testing.T) {
	store := setupAuth(t)
	store.SetToken("lms.example.edu", "tok")

	stdout, _ := execAuth(t, "", "logout")
	if !strings.Contains(stdout, "Removed token") {
		t.Errorf("unexpected output: %s", stdout)
	}

	stdout, _ = execAuth(t, "", "logout")
	if !strings.Contains(stdout, "No token stored") {
		t.Errorf("unexpected output: %s", stdout)
	}
}

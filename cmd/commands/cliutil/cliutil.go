// Package cliutil holds helpers shared by the studysync commands.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"eduplanner/studysync/internal/app"
	"eduplanner/studysync/internal/services/offline"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// OpenApp assembles the App for cmd, honouring the global --offline flag.
func OpenApp(cmd *cobra.Command) (*app.App, error) {
	forceOffline, _ := cmd.Flags().GetBool("offline")
	return app.Open(cmd.Context(), app.Options{ForceOffline: forceOffline})
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WarnIfVolatile prints a warning when pending actions would not survive
// a restart.
func WarnIfVolatile(cmd *cobra.Command, a *app.App) {
	if !a.Store.Durable() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: local storage unavailable, queued actions will be lost when studysync exits.")
	}
}

// PrintResult reports a submit outcome. A failed outcome is returned as
// an error so the process exits non-zero.
func PrintResult(cmd *cobra.Command, verb string, r offline.Result) error {
	out := cmd.OutOrStdout()
	switch r.Outcome {
	case offline.OutcomeSucceeded:
		fmt.Fprintf(out, "%s %s\n", verb, r.Action.ResourceID)
	case offline.OutcomeQueued:
		fmt.Fprintf(out, "Queued %s for %s (action %s); it will sync when online.\n",
			r.Action.Type, r.Action.ResourceID, r.Action.ID)
		if r.Err != nil {
			fmt.Fprintf(out, "  last error: %v\n", r.Err)
		}
	case offline.OutcomeFailed:
		return fmt.Errorf("%s rejected: %w", r.Action.Type, r.Err)
	}
	return nil
}

// ValidateOutput checks an -o/--output flag value.
func ValidateOutput(output string) error {
	switch output {
	case "table", "json":
		return nil
	}
	return fmt.Errorf("unsupported output format %q", output)
}

// Relative formats t relative to now, e.g. "in 12s" or "due".
func Relative(t, now time.Time) string {
	if !t.After(now) {
		return "due"
	}
	return "in " + t.Sub(now).Round(time.Second).String()
}

// OrDash returns s, or "-" when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

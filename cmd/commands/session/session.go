package session

import (
	"context"

	"eduplanner/studysync/internal/services/offline"

	"github.com/spf13/cobra"
)

// NewCommand returns the "session" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start, pause, resume and complete study sessions",
		Long: `Control timed study sessions.

Each change is sent to the server immediately when online. When offline, or
when the server is temporarily unreachable, the change is stored locally and
synced later; the command still succeeds and reports it as queued.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(transitionCommand("start", "Start a study session", "Started",
		(*offline.Service).StartSession))
	cmd.AddCommand(transitionCommand("pause", "Pause a running session", "Paused",
		(*offline.Service).PauseSession))
	cmd.AddCommand(transitionCommand("resume", "Resume a paused session", "Resumed",
		(*offline.Service).ResumeSession))
	cmd.AddCommand(transitionCommand("complete", "Mark a session completed", "Completed",
		(*offline.Service).CompleteSession))
	cmd.AddCommand(StateCommand())

	return cmd
}

type transition func(s *offline.Service, ctx context.Context, sessionID string) (offline.Result, error)

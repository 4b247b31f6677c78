package session

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/domain"

	"github.com/spf13/cobra"
)

// StateCommand returns the "session state" command.
func StateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state <session-id>",
		Short: "Show the presumed state of a session",
		Long: `Show the state the session will have once pending changes sync.

The presumed state combines the last state confirmed by the server with any
changes still waiting in the local queue.

Examples:
  studysync session state algebra-week-3
  studysync session state algebra-week-3 -o json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runState,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

type stateView struct {
	SessionID string               `json:"session_id"`
	State     domain.ResourceState `json:"state"`
	Confirmed domain.ResourceState `json:"confirmed"`
	Syncing   bool                 `json:"syncing"`
	Pending   []string             `json:"pending,omitempty"`
}

func runState(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cliutil.ValidateOutput(output); err != nil {
		return err
	}

	a, err := cliutil.OpenApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Offline.PresumedState(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	view := stateView{
		SessionID: p.ResourceID,
		State:     p.State,
		Confirmed: p.Confirmed,
		Syncing:   p.Syncing(),
	}
	for _, act := range p.Pending {
		view.Pending = append(view.Pending, string(act.Type))
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Session:\t%s\n", view.SessionID)
	fmt.Fprintf(w, "State:\t%s\n", stateLabel(view.State))
	fmt.Fprintf(w, "Confirmed:\t%s\n", stateLabel(view.Confirmed))
	if view.Syncing {
		fmt.Fprintf(w, "Syncing:\t%d pending change(s)\n", len(p.Pending))
		now := time.Now()
		for _, act := range p.Pending {
			fmt.Fprintf(w, "\t%s  attempts %d  next %s\n",
				act.Type, act.RetryCount, cliutil.Relative(a.Queue.NextAttempt(act), now))
		}
	}
	return w.Flush()
}

func stateLabel(s domain.ResourceState) string {
	if s == domain.StateUnknown {
		return "unknown"
	}
	return string(s)
}

package queue

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/queue"

	"github.com/spf13/cobra"
)

// ListCommand returns the "queue list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending actions",
		Long: `List pending actions, oldest first.

Examples:
  studysync queue list
  studysync queue list --resource algebra-1
  studysync queue list --type send_message -o json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runList,
	}

	cmd.Flags().String("type", "", "Only show actions of this type")
	cmd.Flags().String("resource", "", "Only show actions for this session or room")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

type pendingView struct {
	domain.Action
	NextAttemptAt time.Time `json:"next_attempt_at"`
}

func runList(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cliutil.ValidateOutput(output); err != nil {
		return err
	}

	var filter queue.Filter
	if raw, _ := cmd.Flags().GetString("type"); raw != "" {
		t, err := domain.ParseActionType(raw)
		if err != nil {
			return err
		}
		filter.Type = t
	}
	filter.ResourceID, _ = cmd.Flags().GetString("resource")

	a, err := cliutil.OpenApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	actions, err := a.Queue.Pending(cmd.Context(), filter)
	if err != nil {
		return err
	}

	views := make([]pendingView, 0, len(actions))
	for _, act := range actions {
		views = append(views, pendingView{Action: act, NextAttemptAt: a.Queue.NextAttempt(act)})
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(views)
	}

	if len(views) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending actions.")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tRESOURCE\tQUEUED\tATTEMPTS\tNEXT")
	fmt.Fprintln(w, "--\t----\t--------\t------\t--------\t----")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			v.ID,
			v.Type,
			cliutil.OrDash(v.ResourceID),
			v.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			v.RetryCount,
			a.Queue.Lane(v.Type).MaxRetries,
			cliutil.Relative(v.NextAttemptAt, now),
		)
	}
	return w.Flush()
}

package queue

import (
	"context"
	"errors"
	"fmt"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/tui"

	"github.com/spf13/cobra"
)

// DrainCommand returns the "queue drain" command.
func DrainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Run one sync pass now",
		Long: `Attempt every pending action that is due, once.

Actions still in their backoff window are skipped. Nothing is sent while
offline; expired actions are still dropped.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runDrain,
	}
}

func runDrain(cmd *cobra.Command, args []string) error {
	a, err := cliutil.OpenApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	a.CheckConnectivity(ctx)

	drain := func(ctx context.Context) (queue.DrainReport, error) { return a.Queue.Drain(ctx) }

	var report queue.DrainReport
	if cliutil.IsTerminal(cmd.ErrOrStderr()) {
		report, err = tui.DrainWithSpinner(ctx, drain)
	} else {
		report, err = drain(ctx)
	}
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.StoppedOffline {
		fmt.Fprintln(out, "Offline: pending actions were left in the queue.")
	}
	fmt.Fprintf(out, "Attempted %d: %d synced, %d will retry, %d dropped, %d expired, %d not yet due.\n",
		report.Attempted, report.Succeeded, report.Retried, report.Purged, report.Expired, report.Skipped)

	remaining := a.Queue.Status(ctx).PendingCount
	fmt.Fprintf(out, "%d action(s) still pending.\n", remaining)
	return nil
}

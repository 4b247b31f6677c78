package run

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/tui"

	"github.com/spf13/cobra"
)

// NewCommand returns the "run" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep syncing queued actions in the foreground",
		Long: `Watch connectivity and sync queued actions until interrupted.

A sync pass runs at start, whenever the connection comes back, and on the
configured drain interval. With --watch a live view of the queue is shown.

Examples:
  studysync run
  studysync run --watch`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runRun,
	}

	cmd.Flags().Bool("watch", false, "Show a live view of the queue")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetBool("watch")

	a, err := cliutil.OpenApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliutil.WarnIfVolatile(cmd, a)
	a.CheckConnectivity(ctx)

	if watch && cliutil.IsTerminal(cmd.OutOrStdout()) {
		return tui.RunQueueWatch(ctx, a.Queue, a.Run)
	}

	unsubscribe := a.Queue.Subscribe(statusPrinter(cmd))
	defer unsubscribe()

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// statusPrinter logs status lines when something a user would notice
// changes: connectivity, durability or the pending count.
func statusPrinter(cmd *cobra.Command) func(queue.Status) {
	var (
		mu    sync.Mutex
		last  queue.Status
		first = true
	)
	return func(st queue.Status) {
		mu.Lock()
		defer mu.Unlock()

		st.Processing = false
		if !first && st == last {
			return
		}
		first = false
		last = st

		network := "offline"
		if st.Online {
			network = "online"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s, %d pending\n", network, st.PendingCount)
	}
}


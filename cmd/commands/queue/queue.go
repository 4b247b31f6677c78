package queue

import "github.com/spf13/cobra"

// NewCommand returns the "queue" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and sync locally queued actions",
		Long: `Inspect and sync actions waiting in the local queue.

Queued actions are retried with exponential backoff. Actions older than 24
hours, or that have used up their retries, are dropped and recorded in the
sync history.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(ListCommand())
	cmd.AddCommand(DrainCommand())

	return cmd
}

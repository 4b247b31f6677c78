package history

import "github.com/spf13/cobra"

// NewCommand returns the "history" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "View and prune the sync history",
		Long: "View actions that left the local queue and why: synced, rejected,\n" +
			"out of retries, no handler, or expired.\n\n" +
			"History is stored locally in ~/.config/studysync/studysync.db.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}

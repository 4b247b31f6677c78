package chat

import "github.com/spf13/cobra"

// NewCommand returns the "chat" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send room messages and inspect unsent ones",
		Long: `Send messages to study rooms.

Messages are delivered immediately when online. Otherwise they are queued
with a temporary id and sent in order once connectivity returns.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(SendCommand())
	cmd.AddCommand(PendingCommand())

	return cmd
}

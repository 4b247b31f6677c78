package auth

import (
	"fmt"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/tui"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a token is stored for the configured server",
		Long: `Show whether a token is stored for the configured server.

Example:
  studysync auth status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, err := currentAPIURL()
			if err != nil {
				return err
			}
			status := tui.LookupAuthStatus(apiURL, storeFactory())

			// Use TUI in interactive terminal.
			if cliutil.IsTerminal(cmd.OutOrStdout()) {
				if err := tui.RunAuthStatus(status); err != nil {
					return fmt.Errorf("auth status failed: %w", err)
				}
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", status.APIURL, status.Account, status.Detail)
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}

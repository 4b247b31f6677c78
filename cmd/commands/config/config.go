package config

import (
	"eduplanner/studysync/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage studysync configuration",
		Long: "View and modify persistent studysync settings.\n\n" +
			"Configuration is stored at ~/.config/studysync/config.json.\n" +
			"The " + config.EnvAPIURL + " environment variable overrides api-url.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())
	cmd.AddCommand(ListCommand())

	return cmd
}

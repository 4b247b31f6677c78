package config

import (
	"fmt"
	"strings"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/config"
	"eduplanner/studysync/internal/tui"
	"eduplanner/studysync/internal/util"

	"github.com/spf13/cobra"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: "Print the value in force for a configuration key.\n\n" +
			"Without a key in a terminal, opens an interactive viewer where you can\n" +
			"browse and edit all settings.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  studysync config get                 # interactive viewer\n" +
			"  studysync config get drain-interval  # print a single value",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if cliutil.IsTerminal(cmd.OutOrStdout()) {
			if err := tui.RunConfigView(); err != nil {
				return fmt.Errorf("config view failed: %w", err)
			}
			return nil
		}
		return runList(cmd, args)
	}

	spec := config.Lookup(util.NormalizeKey(args[0]))
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q (valid: %s)", args[0], strings.Join(config.KeyNames(), ", "))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), spec.Effective(cfg))
	return nil
}

package config

import (
	"fmt"
	"text/tabwriter"

	"eduplanner/studysync/internal/config"

	"github.com/spf13/cobra"
)

// ListCommand returns the "config list" command.
func ListCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List all configuration values",
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, spec := range config.Keys {
		source := "set"
		if spec.Get(cfg) == "" {
			source = "default"
		}
		fmt.Fprintf(w, "%s\t%s\t(%s)\n", spec.Name, spec.Effective(cfg), source)
	}
	return w.Flush()
}

package history

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/synclog"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

const detailWidth = 60

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently settled actions",
		Long: `List recently settled actions, newest first.

Examples:
  studysync history list
  studysync history list --limit 50
  studysync history list --resource algebra-1
  studysync history list -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of entries to display")
	cmd.Flags().String("resource", "", "Filter by session or room id")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	resource, _ := cmd.Flags().GetString("resource")
	output, _ := cmd.Flags().GetString("output")
	if err := cliutil.ValidateOutput(output); err != nil {
		return err
	}

	repo, err := synclog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := cmd.Context()
	var entries []synclog.Entry
	if resource != "" {
		entries, err = repo.ListByResource(ctx, resource, limit)
	} else {
		entries, err = repo.List(ctx, limit)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sync history.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tRESOURCE\tOUTCOME\tATTEMPTS\tDETAIL")
	fmt.Fprintln(w, "----\t----\t--------\t-------\t--------\t------")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Type,
			cliutil.OrDash(entry.ResourceID),
			entry.Outcome,
			entry.Attempts,
			ansi.Truncate(cliutil.OrDash(entry.Detail), detailWidth, "…"),
		)
	}
	return w.Flush()
}

package queue

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"eduplanner/studysync/cmd/commands/cliutil"

	"github.com/spf13/cobra"
)

// StatusCommand returns the "queue status" command.
func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show pending count, connectivity and durability",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runStatus,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

type statusView struct {
	Pending int  `json:"pending"`
	Online  bool `json:"online"`
	Durable bool `json:"durable"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cliutil.ValidateOutput(output); err != nil {
		return err
	}

	a, err := cliutil.OpenApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	a.CheckConnectivity(ctx)
	st := a.Queue.Status(ctx)
	view := statusView{Pending: st.PendingCount, Online: st.Online, Durable: st.Durable}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Pending:\t%d\n", view.Pending)
	fmt.Fprintf(w, "Network:\t%s\n", networkLabel(view.Online))
	fmt.Fprintf(w, "Storage:\t%s\n", storageLabel(view.Durable))
	return w.Flush()
}

func networkLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func storageLabel(durable bool) string {
	if durable {
		return "durable"
	}
	return "memory only (no durability)"
}

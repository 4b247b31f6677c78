package chat

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/services/chat"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

const previewWidth = 48

// PendingCommand returns the "chat pending" command.
func PendingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending <room-id>",
		Short: "List messages waiting to be sent",
		Long: `List messages for a room that have not reached the server yet.

Examples:
  studysync chat pending physics-101
  studysync chat pending physics-101 -o json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runPending,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runPending(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if err := cliutil.ValidateOutput(output); err != nil {
		return err
	}

	a, err := cliutil.OpenApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	messages, err := a.Chat.Pending(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(messages)
	}

	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending messages.")
		return nil
	}

	printPending(cmd, messages, time.Now())
	return nil
}

func printPending(cmd *cobra.Command, messages []chat.PendingMessage, now time.Time) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMP ID\tQUEUED\tATTEMPTS\tNEXT\tMESSAGE")
	for _, m := range messages {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			m.TempID,
			m.CreatedAt.Local().Format("15:04:05"),
			m.RetryCount,
			cliutil.Relative(m.NextAttemptAt, now),
			ansi.Truncate(oneLine(m.Content), previewWidth, "…"),
		)
	}
	w.Flush()
}

func oneLine(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}

package chat

import (
	"errors"
	"fmt"
	"strings"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/services/offline"
	"eduplanner/studysync/internal/tui"

	"github.com/spf13/cobra"
)

// SendCommand returns the "chat send" command.
func SendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <room-id>",
		Short: "Send a message to a room",
		Long: `Send a message to a room.

Without --content an editor prompt opens when running in a terminal.

Examples:
  studysync chat send physics-101 --content "Anyone up for problem set 4?"
  studysync chat send physics-101`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runSend,
	}

	cmd.Flags().String("content", "", "Message text")

	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	roomID := args[0]
	content, _ := cmd.Flags().GetString("content")

	if strings.TrimSpace(content) == "" {
		if !cliutil.IsTerminal(cmd.OutOrStdout()) {
			return fmt.Errorf("--content is required when not running in a terminal")
		}
		var err error
		content, err = tui.ComposeMessage(roomID)
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Message discarded.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	a, err := cliutil.OpenApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	a.CheckConnectivity(ctx)

	sent, err := a.Chat.Send(ctx, roomID, content)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch sent.Outcome {
	case offline.OutcomeSucceeded:
		fmt.Fprintf(out, "Sent to %s (%s)\n", roomID, sent.TempID)
	case offline.OutcomeQueued:
		fmt.Fprintf(out, "Queued for %s (%s); it will be sent when online.\n", roomID, sent.TempID)
		cliutil.WarnIfVolatile(cmd, a)
	case offline.OutcomeFailed:
		return fmt.Errorf("message rejected: %w", sent.Err)
	}
	return nil
}

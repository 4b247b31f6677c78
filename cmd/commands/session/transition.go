package session

import (
	"fmt"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/services/offline"

	"github.com/spf13/cobra"
)

func transitionCommand(verb, short, past string, do transition) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <session-id>",
		Short: short,
		Example: fmt.Sprintf("  studysync session %s algebra-week-3\n"+
			"  studysync --offline session %s algebra-week-3", verb, verb),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cliutil.OpenApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			a.CheckConnectivity(ctx)

			result, err := do(a.Offline, ctx, args[0])
			if err != nil {
				return err
			}
			if err := cliutil.PrintResult(cmd, past, result); err != nil {
				return err
			}
			if result.Outcome == offline.OutcomeQueued {
				cliutil.WarnIfVolatile(cmd, a)
			}
			return nil
		},
	}
}

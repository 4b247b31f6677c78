package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"eduplanner/studysync/cmd/commands/cliutil"
	"eduplanner/studysync/internal/services/auth"
	"eduplanner/studysync/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token for the configured server",
		Long: `Store an API token for the configured server in the local keychain.

Without --token, an interactive prompt is shown in a terminal; otherwise the
token is read from standard input.

Examples:
  studysync auth login
  studysync auth login --token "$STUDYSYNC_TOKEN"
  echo "$STUDYSYNC_TOKEN" | studysync auth login`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runLogin,
	}

	cmd.Flags().String("token", "", "API token (optional, overrides prompt)")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	apiURL, err := currentAPIURL()
	if err != nil {
		return err
	}
	account := auth.AccountFor(apiURL)
	store := storeFactory()

	token, _ := cmd.Flags().GetString("token")
	token = strings.TrimSpace(token)

	if token == "" {
		switch {
		case cliutil.IsTerminal(cmd.OutOrStdout()) && term.IsTerminal(int(os.Stdin.Fd())):
			err := tui.RunAuthLogin(account, store)
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Login cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token for %s\n", account)
			return nil
		default:
			token, err = readToken(cmd)
			if err != nil {
				return err
			}
		}
	}

	if err := store.SetToken(account, token); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved token for %s\n", account)
	return nil
}

func readToken(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no token on standard input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

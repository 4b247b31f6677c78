package auth

import (
	"errors"
	"fmt"

	"eduplanner/studysync/internal/services/auth"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "logout",
		Short:        "Remove the stored token for the configured server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, err := currentAPIURL()
			if err != nil {
				return err
			}
			account := auth.AccountFor(apiURL)

			err = storeFactory().DeleteToken(account)
			switch {
			case errors.Is(err, auth.ErrTokenNotFound):
				fmt.Fprintf(cmd.OutOrStdout(), "No token stored for %s\n", account)
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed token for %s\n", account)
			return nil
		},
	}
}

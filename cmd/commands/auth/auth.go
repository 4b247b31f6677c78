package auth

import (
	"eduplanner/studysync/internal/config"
	"eduplanner/studysync/internal/services/auth"

	"github.com/spf13/cobra"
)

// storeFactory returns the token store. Tests swap it for a mock.
var storeFactory = auth.DefaultStore

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the API token for the learning-management server",
		Long: `Manage the API token used to sync with the learning-management server.

Tokens are stored in the OS keychain, one per server host, so switching
api-url does not overwrite another server's token.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(LogoutCommand())

	return cmd
}

// currentAPIURL returns the API URL in force.
func currentAPIURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.EffectiveAPIURL(), nil
}

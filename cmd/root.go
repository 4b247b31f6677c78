package cmd

import (
	"os"

	"eduplanner/studysync/cmd/commands/auth"
	"eduplanner/studysync/cmd/commands/chat"
	cfgcmd "eduplanner/studysync/cmd/commands/config"
	"eduplanner/studysync/cmd/commands/history"
	"eduplanner/studysync/cmd/commands/queue"
	"eduplanner/studysync/cmd/commands/run"
	"eduplanner/studysync/cmd/commands/session"
	"eduplanner/studysync/internal/config"
	"eduplanner/studysync/internal/logging"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "studysync",
		Short: "Study sessions and room chat that keep working offline",
		Long: `studysync records study-session changes and room chat messages against a
learning-management server. When the server cannot be reached, changes are
queued locally and replayed in order once connectivity returns.

Quick start:
  studysync auth login                       # Store your API token
  studysync session start <session-id>       # Start a study session
  studysync chat send <room-id> --content hi # Send a room message
  studysync queue status                     # Inspect pending changes
  studysync run --watch                      # Sync in the background`,
		PersistentPreRunE: setupLogging,
	}

	cmd.PersistentFlags().Bool("offline", false, "Queue every change without contacting the server")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(session.NewCommand())
	cmd.AddCommand(chat.NewCommand())
	cmd.AddCommand(queue.NewCommand())
	cmd.AddCommand(run.NewCommand())
	cmd.AddCommand(history.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(auth.NewCommand())

	return cmd
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		level = cfg.EffectiveLogLevel()
	}
	_, err := logging.Setup(level)
	return err
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}

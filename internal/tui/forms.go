package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/util"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrAborted is returned when the user cancels an interactive prompt.
var ErrAborted = errors.New("aborted by user")

func accessible() bool {
	return os.Getenv("ACCESSIBLE") != ""
}

func runForm(groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// ComposeMessage prompts for a chat message to roomID.
func ComposeMessage(roomID string) (string, error) {
	var content string
	field := huh.NewText().
		Title("Message to " + roomID).
		CharLimit(util.MaxMessageLength).
		Value(&content).
		Validate(util.ValidateMessage)

	if err := runForm(huh.NewGroup(field)); err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// DrainWithSpinner runs drain behind a spinner on stderr.
func DrainWithSpinner(ctx context.Context, drain func(context.Context) (queue.DrainReport, error)) (queue.DrainReport, error) {
	var report queue.DrainReport
	err := spinner.New().
		Title("Syncing pending actions...").
		Accessible(accessible()).
		Output(os.Stderr).
		Context(ctx).
		ActionWithErr(func(ctx context.Context) error {
			var err error
			report, err = drain(ctx)
			return err
		}).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return report, ErrAborted
		}
		return report, fmt.Errorf("drain failed: %w", err)
	}
	return report, nil
}

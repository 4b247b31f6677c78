// Package components provides render-only helpers (not tea.Model) shared
// by the studysync views.
package components

import (
	"eduplanner/studysync/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const appName = "studysync"

// Header renders the top bar: the app name and view on the left, an
// optional badge (connectivity, account) right-aligned.
//
//	studysync › run                     ● online
//	─────────────────────────────────────────────
func Header(width int, view string, badge string) string {
	if width < 10 {
		return ""
	}
	inner := width - 4

	title := styles.AccentText.Bold(true).Render(appName)
	if view != "" {
		title += styles.MutedText.Render(" › ") + styles.Title.Render(view)
	}

	// The badge wins when space is short; the title is cut first.
	badgeWidth := lipgloss.Width(badge)
	if room := inner - badgeWidth - 1; lipgloss.Width(title) > room {
		title = ansi.Truncate(title, max(room, 0), "…")
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top,
		title,
		lipgloss.PlaceHorizontal(max(inner-lipgloss.Width(title), 0), lipgloss.Right, badge),
	)

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		BorderForeground(styles.Rule).
		Render(bar)
}

// Package styles holds the palette and lipgloss styles shared by the
// studysync terminal views.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette. Colours are named for what they signal, not their hue.
var (
	Text   = lipgloss.Color("#E2E2E2")
	Subtle = lipgloss.Color("#888888")
	Faint  = lipgloss.Color("#555555")
	Rule   = lipgloss.Color("#444444")
	Accent = lipgloss.Color("#5FAFFF")

	Synced  = lipgloss.Color("#5FD787")
	Pending = lipgloss.Color("#FFD787")
	Failed  = lipgloss.Color("#FF8787")
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(Subtle)

	// Label and Value render the two columns of a detail card.
	Label = lipgloss.NewStyle().Foreground(Subtle).Bold(true)
	Value = lipgloss.NewStyle().Foreground(Text)

	MutedText  = lipgloss.NewStyle().Foreground(Faint)
	AccentText = lipgloss.NewStyle().Foreground(Accent)

	ErrorText   = lipgloss.NewStyle().Foreground(Failed).Bold(true)
	SuccessText = lipgloss.NewStyle().Foreground(Synced).Bold(true)
	WarningText = lipgloss.NewStyle().Foreground(Pending).Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rule).
		Padding(1, 2)
)

// StatusStyle returns the style for a session state, a submit outcome, a
// settled-action outcome or a connectivity label.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "running", "completed", "succeeded", "online":
		return lipgloss.NewStyle().Foreground(Synced).Bold(true)
	case "paused", "queued", "syncing":
		return lipgloss.NewStyle().Foreground(Pending).Bold(true)
	case "retrying":
		return lipgloss.NewStyle().Foreground(Pending)
	case "failed", "terminal", "exhausted", "unroutable", "expired", "offline":
		return lipgloss.NewStyle().Foreground(Failed)
	default:
		return lipgloss.NewStyle().Foreground(Subtle)
	}
}

// StatusIndicator renders "● status" in the status colour.
func StatusIndicator(status string) string {
	style := StatusStyle(status)
	return style.Render("●") + " " + style.Render(status)
}

var (
	keyStyle     = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	keyDescStyle = lipgloss.NewStyle().Foreground(Faint)
	KeySepStyle  = lipgloss.NewStyle().Foreground(Rule)
)

// FormatKeyBinding renders a footer hint such as "d drain".
func FormatKeyBinding(key, desc string) string {
	return keyStyle.Render(key) + " " + keyDescStyle.Render(desc)
}

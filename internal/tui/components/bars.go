package components

import (
	"strings"

	"eduplanner/studysync/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding is one key hint shown in the footer.
type KeyBinding struct {
	Key  string
	Desc string
}

// Footer renders the key hints at the bottom of the screen.
func Footer(width int, bindings []KeyBinding) string {
	if width < 10 || len(bindings) == 0 {
		return ""
	}

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = styles.FormatKeyBinding(b.Key, b.Desc)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		BorderForeground(styles.Rule).
		Render(strings.Join(parts, styles.KeySepStyle.Render("  ")))
}

// Level selects the colour of a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// StatusBar renders a one-line message between the content and footer.
// An empty message renders nothing.
func StatusBar(width int, message string, level Level) string {
	if message == "" {
		return ""
	}

	style := styles.MutedText
	switch level {
	case LevelWarn:
		style = styles.WarningText
	case LevelError:
		style = styles.ErrorText
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Render(style.Render(message))
}

// Frame stacks header, content, an optional status line and footer,
// giving the content whatever height is left.
func Frame(width, height int, header string, content func(h int) string, status, footer string) string {
	used := lipgloss.Height(header) + lipgloss.Height(footer)
	if status != "" {
		used += lipgloss.Height(status)
	}
	contentH := max(height-used, 1)

	sections := []string{header, content(contentH)}
	if status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

package tui

import (
	"fmt"
	"strings"

	"eduplanner/studysync/internal/config"
	"eduplanner/studysync/internal/tui/components"
	"eduplanner/studysync/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Config messages ---

type configSavedMsg struct{}

type configSaveErrorMsg struct {
	err error
}

// --- Config model ---

type configViewModel struct {
	cfg  *config.Config
	keys []config.KeySpec
	save func(*config.Config) error

	cursor  int
	editing bool
	editor  textinput.Model

	width  int
	height int

	status string
	level  components.Level
}

func newConfigViewModel(cfg *config.Config) configViewModel {
	return configViewModel{
		cfg:  cfg,
		keys: config.Keys,
		save: func(c *config.Config) error { return c.Save() },
	}
}

// RunConfigView starts the interactive config viewer/editor.
func RunConfigView() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := tea.NewProgram(newConfigViewModel(cfg), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m configViewModel) Init() tea.Cmd {
	return nil
}

func (m configViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)

	case configSavedMsg:
		m.editing = false
		m.status, m.level = "Configuration saved", components.LevelInfo
		return m, nil

	case configSaveErrorMsg:
		m.status, m.level = "Error: "+msg.err.Error(), components.LevelError
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m configViewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
	case "enter", "e":
		spec := m.keys[m.cursor]
		ti := textinput.New()
		ti.SetValue(spec.Get(m.cfg))
		ti.Placeholder = spec.Effective(m.cfg)
		ti.Focus()
		ti.Width = 40
		m.editor = ti
		m.editing = true
		m.status = ""
		return m, textinput.Blink
	}
	return m, nil
}

func (m configViewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.editor.Value())
		spec := m.keys[m.cursor]
		// An empty value clears the key back to its default.
		if value != "" && spec.Validate != nil {
			if err := spec.Validate(value); err != nil {
				m.status, m.level = err.Error(), components.LevelError
				return m, nil
			}
		}
		spec.Set(m.cfg, value)
		return m, m.saveConfig()
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m configViewModel) saveConfig() tea.Cmd {
	cfg, save := m.cfg, m.save
	return func() tea.Msg {
		if err := save(cfg); err != nil {
			return configSaveErrorMsg{err: err}
		}
		return configSavedMsg{}
	}
}

func (m configViewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "config", "")

	bindings := []components.KeyBinding{
		{Key: "j/k", Desc: "navigate"},
		{Key: "e", Desc: "edit"},
		{Key: "q", Desc: "quit"},
	}
	if m.editing {
		bindings = []components.KeyBinding{
			{Key: "enter", Desc: "save"},
			{Key: "esc", Desc: "cancel"},
		}
	}
	footer := components.Footer(m.width, bindings)
	status := components.StatusBar(m.width, m.status, m.level)

	return components.Frame(m.width, m.height, header, m.renderContent, status, footer)
}

func (m configViewModel) renderContent(height int) string {
	labelWidth := 18

	rows := make([]string, 0, len(m.keys)+1)
	for i, spec := range m.keys {
		selected := i == m.cursor

		value := spec.Get(m.cfg)
		if value == "" {
			value = spec.Effective(m.cfg) + " (default)"
		}

		var row string
		switch {
		case selected && m.editing:
			row = styles.AccentText.Render("> ") + styles.Label.Width(labelWidth).Render(spec.Name) + m.editor.View()
		case selected:
			row = styles.AccentText.Render("> ") + styles.Label.Width(labelWidth).Render(spec.Name) +
				styles.Value.Bold(true).Render(value)
		default:
			row = "  " + styles.MutedText.Width(labelWidth).Render(spec.Name) + styles.MutedText.Render(value)
		}
		rows = append(rows, row)

		if selected && !m.editing {
			rows = append(rows, "    "+styles.MutedText.Italic(true).Render(spec.Description))
		}
	}

	card := styles.Card.Width(72).Render(strings.Join(rows, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, styles.Title.Render("Configuration"), "", card)

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, combined)
}

package tui

import (
	"errors"
	"fmt"
	"strings"

	"eduplanner/studysync/internal/services/auth"
	"eduplanner/studysync/internal/tui/components"
	"eduplanner/studysync/internal/tui/styles"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Messages ---

type tokenSavedMsg struct{}

type tokenSaveErrorMsg struct {
	err error
}

// --- Auth login model ---

type authLoginModel struct {
	account string
	store   auth.Store

	tokenInput textinput.Model

	width  int
	height int

	err   error
	saved bool
}

// RunAuthLogin prompts for a token and stores it under account. It
// returns ErrAborted when the user cancels.
func RunAuthLogin(account string, store auth.Store) error {
	ti := textinput.New()
	ti.Placeholder = "paste your API token here"
	ti.Focus()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.Width = 50

	p := tea.NewProgram(authLoginModel{
		account:    account,
		store:      store,
		tokenInput: ti,
	}, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run auth login: %w", err)
	}

	if final := result.(authLoginModel); !final.saved {
		return ErrAborted
	}
	return nil
}

func (m authLoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m authLoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			token := strings.TrimSpace(m.tokenInput.Value())
			if token == "" {
				m.err = errors.New("token cannot be empty")
				return m, nil
			}
			m.err = nil
			return m, m.saveToken(token)
		}
		m.err = nil

	case tokenSavedMsg:
		m.saved = true
		return m, tea.Quit

	case tokenSaveErrorMsg:
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m authLoginModel) saveToken(token string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.SetToken(m.account, token); err != nil {
			return tokenSaveErrorMsg{err: err}
		}
		return tokenSavedMsg{}
	}
}

func (m authLoginModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth login", styles.Subtitle.Render(m.account))
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "enter", Desc: "save"},
		{Key: "esc", Desc: "cancel"},
	})

	return components.Frame(m.width, m.height, header, m.renderContent, "", footer)
}

func (m authLoginModel) renderContent(height int) string {
	parts := []string{
		styles.Title.Render("API Token"),
		styles.MutedText.Render("Token for " + m.account),
		"",
		m.tokenInput.View(),
	}
	if m.err != nil {
		parts = append(parts, "", styles.ErrorText.Render(m.err.Error()))
	}

	return lipgloss.Place(
		m.width, height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

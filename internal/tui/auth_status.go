package tui

import (
	"errors"
	"fmt"
	"strings"

	"eduplanner/studysync/internal/services/auth"
	"eduplanner/studysync/internal/tui/components"
	"eduplanner/studysync/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AuthStatus describes the stored credentials for one server.
type AuthStatus struct {
	APIURL  string
	Account string
	OK      bool
	Detail  string // "logged in", "not logged in", or the lookup error
}

// LookupAuthStatus reads the token state for apiURL from store.
func LookupAuthStatus(apiURL string, store auth.Store) AuthStatus {
	st := AuthStatus{APIURL: apiURL, Account: auth.AccountFor(apiURL)}
	_, err := store.GetToken(st.Account)
	switch {
	case err == nil:
		st.OK, st.Detail = true, "logged in"
	case errors.Is(err, auth.ErrTokenNotFound):
		st.Detail = "not logged in"
	default:
		st.Detail = fmt.Sprintf("error: %v", err)
	}
	return st
}

// --- Auth status model ---

type authStatusModel struct {
	status AuthStatus

	width  int
	height int
}

// RunAuthStatus shows the credential state in a full-window view.
func RunAuthStatus(status AuthStatus) error {
	p := tea.NewProgram(authStatusModel{status: status}, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m authStatusModel) Init() tea.Cmd {
	return nil
}

func (m authStatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m authStatusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "auth status", "")
	footer := components.Footer(m.width, []components.KeyBinding{{Key: "q", Desc: "quit"}})
	return components.Frame(m.width, m.height, header, m.renderContent, "", footer)
}

func (m authStatusModel) renderContent(height int) string {
	labelWidth := 12

	token := styles.MutedText.Render(m.status.Detail)
	if m.status.OK {
		token = styles.SuccessText.Render(m.status.Detail)
	}

	rows := []string{
		styles.Label.Width(labelWidth).Render("Server") + styles.Value.Render(m.status.APIURL),
		styles.Label.Width(labelWidth).Render("Account") + styles.Value.Render(m.status.Account),
		styles.Label.Width(labelWidth).Render("Token") + token,
	}

	card := styles.Card.Width(56).Render(strings.Join(rows, "\n"))
	combined := lipgloss.JoinVertical(lipgloss.Center, styles.Title.Render("Authentication"), "", card)

	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, combined)
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eduplanner/studysync/internal/domain"
	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/tui/components"
	"eduplanner/studysync/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// QueueSource is the part of the queue manager the watch view reads.
type QueueSource interface {
	Status(ctx context.Context) queue.Status
	Pending(ctx context.Context, f queue.Filter) ([]domain.Action, error)
	NextAttempt(a domain.Action) time.Time
	Subscribe(fn func(queue.Status)) func()
	Trigger()
}

// --- Messages ---

type queueSnapshotMsg struct {
	status  queue.Status
	pending []domain.Action
	err     error
}

type runFinishedMsg struct {
	err error
}

// --- Queue watch model ---

type queueWatchModel struct {
	ctx     context.Context
	source  QueueSource
	updates <-chan queue.Status
	now     func() time.Time

	status  queue.Status
	pending []domain.Action
	loaded  bool

	spinner spinner.Model

	width  int
	height int

	err error
}

func newQueueWatchModel(ctx context.Context, source QueueSource, updates <-chan queue.Status) queueWatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	return queueWatchModel{
		ctx:     ctx,
		source:  source,
		updates: updates,
		now:     time.Now,
		spinner: s,
	}
}

// RunQueueWatch shows a live view of the queue while run drives it. The
// view exits on q or when run returns.
func RunQueueWatch(ctx context.Context, source QueueSource, run func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Keep only the latest status; the view re-reads pending actions.
	updates := make(chan queue.Status, 1)
	unsubscribe := source.Subscribe(func(st queue.Status) {
		select {
		case updates <- st:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- st:
			default:
			}
		}
	})
	defer unsubscribe()

	p := tea.NewProgram(newQueueWatchModel(ctx, source, updates), tea.WithAltScreen(), tea.WithContext(ctx))

	runErr := make(chan error, 1)
	go func() {
		err := run(ctx)
		runErr <- err
		p.Send(runFinishedMsg{err: err})
	}()

	_, err := p.Run()
	cancel()
	if rerr := <-runErr; rerr != nil {
		return rerr
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run queue view: %w", err)
	}
	return nil
}

func (m queueWatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForStatus())
}

// waitForStatus blocks on the next status update, then loads pending
// actions off the UI goroutine.
func (m queueWatchModel) waitForStatus() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case st := <-m.updates:
			pending, err := m.source.Pending(m.ctx, queue.Filter{})
			return queueSnapshotMsg{status: st, pending: pending, err: err}
		}
	}
}

func (m queueWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "d":
			m.source.Trigger()
		}
		return m, nil

	case queueSnapshotMsg:
		m.status = msg.status
		m.err = msg.err
		if msg.err == nil {
			m.pending = msg.pending
		}
		m.loaded = true
		return m, m.waitForStatus()

	case runFinishedMsg:
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m queueWatchModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "run", styles.StatusIndicator(connectivity(m.status.Online)))
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "d", Desc: "drain now"},
		{Key: "q", Desc: "quit"},
	})

	var status string
	switch {
	case m.err != nil:
		status = components.StatusBar(m.width, "Error: "+m.err.Error(), components.LevelError)
	case m.loaded && !m.status.Durable:
		status = components.StatusBar(m.width, "Storage unavailable: pending actions will be lost on exit", components.LevelWarn)
	}

	return components.Frame(m.width, m.height, header, m.renderContent, status, footer)
}

func (m queueWatchModel) renderContent(height int) string {
	if !m.loaded {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" "+styles.MutedText.Render("Reading queue..."))
	}

	activity := styles.MutedText.Render("idle")
	if m.status.Processing {
		activity = m.spinner.View() + " " + styles.AccentText.Render("syncing")
	}

	summary := styles.Label.Render("Pending ") + styles.Value.Render(fmt.Sprintf("%d", m.status.PendingCount)) +
		"   " + activity

	lines := []string{summary, ""}
	if len(m.pending) == 0 {
		lines = append(lines, styles.MutedText.Render("Nothing waiting to sync."))
	} else {
		lines = append(lines, m.renderPending(height-len(lines))...)
	}

	return lipgloss.NewStyle().Padding(1, 2).Height(height).Render(strings.Join(lines, "\n"))
}

// renderPending renders one line per action, clipped to the window.
func (m queueWatchModel) renderPending(rows int) []string {
	rows = max(rows-2, 1)
	lineWidth := max(m.width-4, 10)
	now := m.now()

	var out []string
	for i, a := range m.pending {
		if i == rows-1 && len(m.pending) > rows {
			out = append(out, styles.MutedText.Render(fmt.Sprintf("… and %d more", len(m.pending)-i)))
			break
		}
		out = append(out, ansi.Truncate(m.pendingLine(a, now), lineWidth, "…"))
	}
	return out
}

func (m queueWatchModel) pendingLine(a domain.Action, now time.Time) string {
	state := "queued"
	if a.RetryCount > 0 {
		state = "retrying"
	}
	next := "due"
	if at := m.source.NextAttempt(a); at.After(now) {
		next = "in " + at.Sub(now).Round(time.Second).String()
	}

	return fmt.Sprintf("%s  %-18s %-24s %s  %s",
		styles.StatusStyle(state).Render("●"),
		a.Type,
		a.ResourceID,
		styles.MutedText.Render(fmt.Sprintf("attempts %d", a.RetryCount)),
		styles.MutedText.Render(next),
	)
}

func connectivity(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

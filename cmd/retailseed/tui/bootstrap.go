// Package tui implements the interactive bootstrap UI.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/pebble-retail/pkg/bootstrap"
	"github.com/marshallshelly/pebble-retail/pkg/models"
)

// BootstrapMode represents the current mode of the bootstrap UI
type BootstrapMode int

const (
	ModeConfirm BootstrapMode = iota
	ModeRunning
	ModeComplete
	ModeError
)

// BootstrapModel is the Bubbletea model for an interactive bootstrap
type BootstrapModel struct {
	ctx          context.Context
	cfg          bootstrap.Config
	mode         BootstrapMode
	list         list.Model
	confirmation ConfirmationDialog
	progress     ProgressView
	logs         LogView
	events       chan bootstrap.Event
	report       *bootstrap.Report
	err          error
	width        int
	height       int
	index        map[string]int
}

// NewBootstrapModel creates the UI model. The table list is built from the
// declared models in dependency order.
func NewBootstrapModel(ctx context.Context, cfg bootstrap.Config) (BootstrapModel, error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return BootstrapModel{}, err
	}
	levels, err := reg.Levels()
	if err != nil {
		return BootstrapModel{}, err
	}

	var items []list.Item
	index := make(map[string]int)
	for level, tables := range levels {
		for _, t := range tables {
			index[t.Name] = len(items)
			items = append(items, TableItem{Name: t.Name, Level: level, Status: StatusPending})
		}
	}

	l := list.New(items, TableItemDelegate{}, 0, 0)
	l.Title = "Retail Schema"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	m := BootstrapModel{
		ctx:   ctx,
		cfg:   cfg,
		mode:  ModeConfirm,
		list:  l,
		logs:  NewLogView(8),
		index: index,
		// one create-or-skip and one seed step per table, plus the commit
		progress: NewProgressView(2*len(items) + 1),
	}
	m.confirmation = NewConfirmationDialog(
		"Bootstrap Retail Schema",
		fmt.Sprintf("Create %d tables and load sample data into\n%s", len(items), subtitleStyle.Render(cfg.Target())),
	)
	return m, nil
}

// Messages
type eventMsg bootstrap.Event

type doneMsg struct {
	report *bootstrap.Report
	err    error
}

// Commands
func runCmd(ctx context.Context, cfg bootstrap.Config, events chan<- bootstrap.Event) tea.Cmd {
	return func() tea.Msg {
		// The alt screen owns the terminal; diagnostics are dropped.
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		report, err := bootstrap.Run(ctx, cfg,
			bootstrap.WithLogger(logger),
			bootstrap.WithObserver(func(e bootstrap.Event) { events <- e }),
		)
		close(events)
		return doneMsg{report: report, err: err}
	}
}

func waitForEvent(events <-chan bootstrap.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

// Init initializes the model
func (m BootstrapModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m *BootstrapModel) start() tea.Cmd {
	m.mode = ModeRunning
	m.events = make(chan bootstrap.Event, 64)
	m.progress.Message = "Opening " + m.cfg.Target()
	return tea.Batch(
		m.progress.Tick(),
		runCmd(m.ctx, m.cfg, m.events),
		waitForEvent(m.events),
	)
}

func (m *BootstrapModel) setStatus(table, status string, rows int) {
	i, ok := m.index[table]
	if !ok {
		return
	}
	item := m.list.Items()[i].(TableItem)
	item.Status = status
	item.Rows += rows
	m.list.SetItem(i, item)
}

func (m *BootstrapModel) apply(e bootstrap.Event) {
	switch e.Stage {
	case bootstrap.StageOpen:
		m.logs.AddLog(infoStyle.Render("Connected to " + m.cfg.Target()))
	case bootstrap.StageCreate:
		m.setStatus(e.Table, StatusCreated, 0)
		m.progress.Current++
		m.progress.Message = "Created " + e.Table
	case bootstrap.StageSkip:
		m.setStatus(e.Table, StatusExisting, 0)
		m.progress.Current++
		m.progress.Message = "Reusing " + e.Table
		m.logs.AddLog(mutedStyle.Render(e.Table + " already exists"))
	case bootstrap.StageSeed:
		m.setStatus(e.Table, StatusSeeded, e.Rows)
		m.progress.Current++
		m.progress.Message = fmt.Sprintf("Seeded %s", e.Table)
		m.logs.AddLog(successStyle.Render(fmt.Sprintf("✓ %d rows into %s", e.Rows, e.Table)))
	case bootstrap.StageCommit:
		m.progress.Current = m.progress.Total
		m.progress.Message = "Committed"
	case bootstrap.StageAbort:
		if e.Table != "" {
			m.setStatus(e.Table, StatusFailed, 0)
		}
		m.logs.AddLog(dangerStyle.Render("Rolled back"))
	}
}

// Update handles messages
func (m BootstrapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width/2-4, msg.Height-4)
		return m, nil

	case eventMsg:
		m.apply(bootstrap.Event(msg))
		return m, waitForEvent(m.events)

	case doneMsg:
		m.report = msg.report
		m.err = msg.err
		if msg.err != nil {
			m.mode = ModeError
		} else {
			m.mode = ModeComplete
			m.progress.Current = m.progress.Total
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeConfirm:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			}
			m.confirmation.OnConfirm = m.start
			m.confirmation.OnCancel = func() tea.Cmd { return tea.Quit }
			cmd := m.confirmation.Update(msg)
			return m, cmd

		case ModeRunning:
			// The run is one transaction; quitting now would only hide it
			return m, nil

		case ModeComplete, ModeError:
			switch msg.String() {
			case "ctrl+c", "q", "enter":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
	}

	if m.mode == ModeRunning {
		cmd := m.progress.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI
func (m BootstrapModel) View() string {
	switch m.mode {
	case ModeConfirm:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirmation.View())

	case ModeRunning:
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.list.View(),
			lipgloss.JoinVertical(lipgloss.Left, m.progress.View(), m.logs.View()),
		)

	case ModeComplete:
		msg := titleStyle.Render("Bootstrap Complete!") + "\n\n" +
			successStyle.Render(fmt.Sprintf("Committed %d rows into %d tables", m.report.TotalRows(), len(m.report.Inserted))) + "\n" +
			mutedStyle.Render(fmt.Sprintf("%d created, %d reused", len(m.report.Created), len(m.report.Existing))) + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))
		return lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), boxStyle.Render(msg))

	case ModeError:
		msg := titleStyle.Render("Bootstrap Failed") + "\n\n" +
			errorStyle.Render(m.err.Error()) + "\n" +
			mutedStyle.Render("Nothing was committed.") + "\n\n" +
			helpStyle.Render(FormatKey("enter/q", "exit"))
		return lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), boxStyle.Render(msg))
	}

	return "Unknown mode"
}

// Err returns the bootstrap error, if the run failed
func (m BootstrapModel) Err() error {
	return m.err
}

// RunBootstrapUI starts the interactive bootstrap UI
func RunBootstrapUI(ctx context.Context, cfg bootstrap.Config) error {
	model, err := NewBootstrapModel(ctx, cfg)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(BootstrapModel); ok {
		return m.Err()
	}
	return nil
}

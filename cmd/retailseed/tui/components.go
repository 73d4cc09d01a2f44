package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmationDialog represents a yes/no confirmation dialog
type ConfirmationDialog struct {
	Title       string
	Message     string
	YesSelected bool
	OnConfirm   func() tea.Cmd
	OnCancel    func() tea.Cmd
}

// NewConfirmationDialog creates a new confirmation dialog
func NewConfirmationDialog(title, message string) ConfirmationDialog {
	return ConfirmationDialog{
		Title:       title,
		Message:     message,
		YesSelected: true,
	}
}

// Update handles confirmation dialog updates
func (d *ConfirmationDialog) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "left", "h", "y":
		d.YesSelected = true
	case "right", "l", "n":
		d.YesSelected = false
	case "enter":
		if d.YesSelected && d.OnConfirm != nil {
			return d.OnConfirm()
		}
		if !d.YesSelected && d.OnCancel != nil {
			return d.OnCancel()
		}
	}
	return nil
}

// View renders the confirmation dialog
func (d ConfirmationDialog) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")

	if d.YesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(FormatKey("←/→", "navigate") + " • " + FormatKey("enter", "confirm") + " • " + FormatKey("esc/q", "cancel")))

	return boxStyle.Render(b.String())
}

// TableItem is one table in the bootstrap list
type TableItem struct {
	Name   string
	Level  int
	Status string
	Rows   int
}

func (i TableItem) FilterValue() string { return i.Name }
func (i TableItem) Title() string {
	return fmt.Sprintf("%s %s", FormatStatus(i.Status), i.Name)
}
func (i TableItem) Description() string {
	desc := fmt.Sprintf("level %d", i.Level)
	if i.Rows > 0 {
		desc += fmt.Sprintf(" • %d rows", i.Rows)
	}
	return mutedStyle.Render(desc)
}

// TableItemDelegate renders table list items
type TableItemDelegate struct{}

func (d TableItemDelegate) Height() int                             { return 2 }
func (d TableItemDelegate) Spacing() int                            { return 0 }
func (d TableItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d TableItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(TableItem)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title() + "\n  " + i.Description())
	}

	_, _ = fmt.Fprint(w, s)
}

// ProgressView represents a progress indicator
type ProgressView struct {
	Current int
	Total   int
	Message string
	bar     progress.Model
	spinner spinner.Model
}

// NewProgressView creates a progress view for total steps
func NewProgressView(total int) ProgressView {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	return ProgressView{
		Total:   total,
		bar:     progress.New(progress.WithGradient(string(colorPrimary), string(colorSuccess)), progress.WithWidth(40)),
		spinner: s,
	}
}

// Tick starts the spinner
func (p ProgressView) Tick() tea.Cmd {
	return p.spinner.Tick
}

// Update advances the spinner
func (p *ProgressView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return cmd
}

// Percent returns the completed fraction
func (p ProgressView) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return min(float64(p.Current)/float64(p.Total), 1)
}

// View renders the progress view
func (p ProgressView) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bootstrap Progress"))
	b.WriteString("\n\n")

	if p.Message != "" {
		b.WriteString(p.spinner.View() + " " + infoStyle.Render(p.Message))
		b.WriteString("\n\n")
	}

	b.WriteString(p.bar.ViewAs(p.Percent()))
	b.WriteString(" " + mutedStyle.Render(fmt.Sprintf("%d/%d", p.Current, p.Total)))

	return boxStyle.Render(b.String())
}

// LogView displays bootstrap logs
type LogView struct {
	Logs   []string
	MaxLen int
}

// NewLogView creates a new log view
func NewLogView(maxLen int) LogView {
	return LogView{
		Logs:   make([]string, 0),
		MaxLen: maxLen,
	}
}

// AddLog adds a log entry
func (l *LogView) AddLog(entry string) {
	l.Logs = append(l.Logs, entry)
	if len(l.Logs) > l.MaxLen {
		l.Logs = l.Logs[1:]
	}
}

// View renders the log view
func (l LogView) View() string {
	if len(l.Logs) == 0 {
		return mutedStyle.Render("No logs")
	}

	var b strings.Builder
	for _, log := range l.Logs {
		b.WriteString(mutedStyle.Render("• "))
		b.WriteString(log)
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#F3F4F6")
	colorBorder  = lipgloss.Color("#4B5563")

	// Title styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// List styles
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				PaddingLeft(2)

	unselectedItemStyle = lipgloss.NewStyle().
				Foreground(colorText).
				PaddingLeft(4)

	// Box styles
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	// Button styles
	activeButtonStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorPrimary).
				Padding(0, 3).
				Bold(true)

	inactiveButtonStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Background(lipgloss.Color("#1F2937")).
				Padding(0, 3)

	// Status indicator styles
	statusDoneStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			SetString("✓")

	statusPendingStyle = lipgloss.NewStyle().
				Foreground(colorWarning).
				SetString("○")

	statusFailedStyle = lipgloss.NewStyle().
				Foreground(colorDanger).
				SetString("✗")

	statusExistingStyle = lipgloss.NewStyle().
				Foreground(colorInfo).
				SetString("◉")

	// Help styles
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	// Error styles
	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

// Table states shown in the UI.
const (
	StatusPending  = "pending"
	StatusCreated  = "created"
	StatusExisting = "existing"
	StatusSeeded   = "seeded"
	StatusFailed   = "failed"
)

// FormatStatus returns a styled status indicator
func FormatStatus(status string) string {
	switch status {
	case StatusCreated, StatusSeeded:
		return statusDoneStyle.Render() + " " + successStyle.Render(status)
	case StatusPending:
		return statusPendingStyle.Render() + " " + warningStyle.Render(status)
	case StatusFailed:
		return statusFailedStyle.Render() + " " + dangerStyle.Render(status)
	case StatusExisting:
		return statusExistingStyle.Render() + " " + infoStyle.Render(status)
	default:
		return mutedStyle.Render(status)
	}
}

// FormatKey formats a help key
func FormatKey(key, description string) string {
	return helpKeyStyle.Render(key) + " " + mutedStyle.Render(description)
}

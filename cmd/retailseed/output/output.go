// Package output prints styled, line oriented messages for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Out is where messages are written. Tests may replace it.
var Out io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Fprint(Out, successStyle.Render("✓ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	fmt.Fprint(Out, warningStyle.Render("⚠ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...any) {
	fmt.Fprint(Out, errorStyle.Render("✗ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...any) {
	fmt.Fprint(Out, infoStyle.Render("ℹ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...any) {
	fmt.Fprintln(Out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, primaryStyle.Render(title))
	fmt.Fprintln(Out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// JSON writes v as indented JSON.
func JSON(v any) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// StatusIcon returns a colored status icon
func StatusIcon(status string) string {
	switch status {
	case "created", "seeded", "ok":
		return successStyle.Render("✓")
	case "existing":
		return infoStyle.Render("•")
	case "missing", "pending":
		return warningStyle.Render("○")
	case "conflict", "failed":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}

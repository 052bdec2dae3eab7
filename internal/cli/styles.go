// Package cli holds the styled terminal output shared by the ludeq
// commands.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#00AAAA")
	accentColor  = lipgloss.Color("#FFA500")
	errorColor   = lipgloss.Color("#A40000")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	WarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information.
func PrintVersion(w io.Writer, version string) {
	fmt.Fprintln(w, TitleStyle.Render("LudEQ"))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message.
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message.
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", WarnStyle.Render("Warning:"), message)
}

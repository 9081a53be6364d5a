// Package style holds the terminal styles the desk CLI prints with.
package style

import "github.com/charmbracelet/lipgloss"

var (
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")).
		Bold(true)

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12"))

	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	Bold = lipgloss.NewStyle().
		Bold(true)

	// Header underlines table column titles.
	Header = lipgloss.NewStyle().
		Bold(true).
		Underline(true)

	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("⚠")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Info.Render("→")
)

// Field renders a "label: value" line with a dimmed label padded to width.
func Field(label, value string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(Dim.Render(label+":")) + " " + value
}

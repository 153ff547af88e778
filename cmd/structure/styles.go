package main

import (
	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	// BoxStyle frames one value of the summary row.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(14)

	// LabelStyle for the caption inside a box.
	LabelStyle = lipgloss.NewStyle().Faint(true)

	// TopStyle marks a top structure.
	TopStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	// BottomStyle marks a bottom structure.
	BottomStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// SummaryBox renders one labelled value.
func SummaryBox(label, value string, style lipgloss.Style) string {
	return BoxStyle.Render(LabelStyle.Render(label) + "\n" + style.Render(value))
}

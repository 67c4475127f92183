package ui

import "github.com/charmbracelet/lipgloss"

const defaultWidth = 60

var (
	accent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	subtle = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	danger = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 2).
			Align(lipgloss.Center)

	cardValueStyle = lipgloss.NewStyle().Bold(true)

	filterStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeFilterStyle = filterStyle.Bold(true).Underline(true).Foreground(accent)

	cursorStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	hintStyle   = lipgloss.NewStyle().Foreground(subtle)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(danger).
			Padding(1, 4).
			Bold(true)
)

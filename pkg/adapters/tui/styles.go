package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle      = lipgloss.NewStyle().Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true)
	insertedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#15803d"))
	replacedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ca8a04"))
	emptyStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

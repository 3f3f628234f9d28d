package internal

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for human-readable command output.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color

	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultTheme returns the default colours and styles.
func DefaultTheme() *Theme {
	theme := &Theme{
		Primary: lipgloss.Color("#7AA2F7"),
		Muted:   lipgloss.Color("#565F89"),
	}

	theme.Title = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	theme.Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9ECE6A"))

	theme.Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E0AF68"))

	theme.Danger = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F7768E"))

	theme.Dim = lipgloss.NewStyle().
		Foreground(theme.Muted)

	return theme
}

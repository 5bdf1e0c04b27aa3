package ui

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette for notices and the confirm view.
type Theme struct {
	Accent  lipgloss.Color
	Subtle  lipgloss.Color
	Text    lipgloss.Color
	Dim     lipgloss.Color
	Success lipgloss.Color
	Warn    lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default color palette (catppuccin-inspired).
func DefaultTheme() Theme {
	return Theme{
		Accent:  lipgloss.Color("#cba6f7"),
		Subtle:  lipgloss.Color("#6c7086"),
		Text:    lipgloss.Color("#cdd6f4"),
		Dim:     lipgloss.Color("#585b70"),
		Success: lipgloss.Color("#a6e3a1"),
		Warn:    lipgloss.Color("#f9e2af"),
		Error:   lipgloss.Color("#f38ba8"),
	}
}

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pfassina/titlesync/internal/retitle"
)

// Styles holds the rendered styles for one Theme.
type Styles struct {
	Title     lipgloss.Style
	Path      lipgloss.Style
	Arrow     lipgloss.Style
	Dim       lipgloss.Style
	Renamed   lipgloss.Style
	Pending   lipgloss.Style
	Unchanged lipgloss.Style
	Warn      lipgloss.Style
	Error     lipgloss.Style
}

// NewStyles builds styles from a palette.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		Path: lipgloss.NewStyle().
			Foreground(t.Text),
		Arrow: lipgloss.NewStyle().
			Foreground(t.Subtle),
		Dim: lipgloss.NewStyle().
			Foreground(t.Dim),
		Renamed: lipgloss.NewStyle().
			Foreground(t.Success),
		Pending: lipgloss.NewStyle().
			Foreground(t.Accent),
		Unchanged: lipgloss.NewStyle().
			Foreground(t.Subtle),
		Warn: lipgloss.NewStyle().
			Foreground(t.Warn),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error),
	}
}

// For returns the style used for an outcome.
func (s Styles) For(o retitle.Outcome) lipgloss.Style {
	switch o {
	case retitle.Renamed:
		return s.Renamed
	case retitle.WouldRename:
		return s.Pending
	case retitle.AlreadyMatches, retitle.OptedOut:
		return s.Unchanged
	case retitle.Collision:
		return s.Error
	default:
		return s.Warn
	}
}

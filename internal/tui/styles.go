package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/hedgesweep/internal/ui"
)

var (
	titleStyle       lipgloss.Style
	mutedStyle       lipgloss.Style
	accentStyle      lipgloss.Style
	goodStyle        lipgloss.Style
	badStyle         lipgloss.Style
	tableHeaderStyle lipgloss.Style
)

func init() {
	initStyles()
}

// initStyles rebuilds the dashboard styles from the active ui theme. Run
// calls it again because the theme is chosen after package init.
func initStyles() {
	t := ui.GetCurrentTheme()

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Heading)
	mutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	accentStyle = lipgloss.NewStyle().Foreground(t.Heading)
	goodStyle = lipgloss.NewStyle().Foreground(t.Positive)
	badStyle = lipgloss.NewStyle().Foreground(t.Negative).Bold(true)
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
}

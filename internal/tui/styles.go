package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the search box.
type Styles struct {
	Prompt    lipgloss.Style
	Row       lipgloss.Style
	Selected  lipgloss.Style
	Dim       lipgloss.Style
	Sponsored lipgloss.Style
	AI        lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles uses the same palette as the version banner.
func DefaultStyles() Styles {
	text := lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}
	return Styles{
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}),
		Row:       lipgloss.NewStyle().Foreground(text).PaddingLeft(2),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(text).Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"}).PaddingLeft(2),
		Dim:       lipgloss.NewStyle().Faint(true),
		Sponsored: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#ea9d34", Dark: "#f6c177"}),
		AI:        lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"}),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
		Help:      lipgloss.NewStyle().Faint(true).Italic(true),
	}
}

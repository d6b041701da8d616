package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	team    lipgloss.Style
	detail  lipgloss.Style
	member  lipgloss.Style
	role    lipgloss.Style
	pending lipgloss.Style
	synced  lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		team:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		member:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		role:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		pending: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		synced:  lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}

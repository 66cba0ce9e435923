package cart

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	line    lipgloss.Style
	sku     lipgloss.Style
	detail  lipgloss.Style
	price   lipgloss.Style
	total   lipgloss.Style
	warning lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
	time    lipgloss.Style
	event   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		line:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		sku:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		price:   lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		total:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
		time:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		event:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

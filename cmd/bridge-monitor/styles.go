package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the TUI.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

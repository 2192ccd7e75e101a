package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the scope panel and readout panel horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, scopePanel, readoutPanel, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, scopePanel, readoutPanel)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonar-prox.klederson.com/internal/config"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, board string, running bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"S", " resume"},
		{"P", "ause"},
		{"↑↓", " target"},
		{"G", "litch"},
		{"R", "ising"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	status := ""
	if running {
		status = StyleStatusRunning.Render("LIVE")
	} else {
		status = StyleStatusPaused.Render("PAUSED")
	}

	boardInfo := StyleMenuLabel.Render(fmt.Sprintf("Board: %s", board))

	left := StyleMenuKey.Render(title) + menu
	right := status + "  " + boardInfo + " "

	gap := width - StyleMenuBar.GetHorizontalPadding() - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

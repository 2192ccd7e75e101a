package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonar-prox.klederson.com/internal/sonar"
)

// RenderStatusBar renders the bottom status bar with the controller
// counters.
func RenderStatusBar(width int, running bool, snap sonar.Snapshot, overruns int) string {
	status := ""
	switch {
	case !running:
		status = StyleStatusPaused.Render("[PAUSED]")
	case snap.Unpaired > 0 || snap.Restarts > 0 || overruns > 0:
		status = StyleStatusFault.Render("[GLITCHED]")
	default:
		status = StyleStatusRunning.Render("[PINGING]")
	}

	info := fmt.Sprintf(" Cycles: %d  Unpaired: %d  Restarts: %d  Ignored: %d  Dropped: %d  State: %s",
		snap.Cycles, snap.Unpaired, snap.Restarts, snap.Ignored, overruns, snap.State)

	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - StyleStatusBar.GetHorizontalPadding() - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}

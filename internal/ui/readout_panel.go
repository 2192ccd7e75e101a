package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/sonar"
)

// Readout is what the side panel shows about the loop.
type Readout struct {
	Snapshot sonar.Snapshot
	Target   float64   // simulated target, cm
	History  []float64 // recent distances, oldest first
	Now      time.Time
}

// RenderReadoutPanel renders the measurement readout next to the scope.
func RenderReadoutPanel(r Readout, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render("READOUT")
	sep := StyleSeparator.Render(strings.Repeat("-", innerW))
	lines := []string{title, sep}

	snap := r.Snapshot
	last := snap.Last

	dist, zone := "--", "--"
	if snap.HasLast {
		dist = fmt.Sprintf("%.2f cm", last.Distance)
		zone = last.Zone.String()
	}

	fields := []struct{ label, value string }{
		{"Distance", dist},
		{"Zone", zone},
		{"Target", fmt.Sprintf("%.1f cm", r.Target)},
		{"State", snap.State.String()},
		{"Last", formatAge(snap.LastAt, r.Now)},
	}
	for _, f := range fields {
		lines = append(lines, StyleLabel.Render(fmt.Sprintf("  %-10s", f.label))+StyleValue.Render(f.value))
	}
	lines = append(lines, "")

	lines = append(lines, StyleLabel.Render("  LEDs      ")+
		renderLED("A", last.Indicators.A)+"  "+renderLED("B", last.Indicators.B))
	lines = append(lines, StyleLabel.Render("  Tone      ")+StyleValue.Render(toneLabel(last)))
	lines = append(lines, StyleLabel.Render("  Registers ")+
		StyleValue.Render(fmt.Sprintf("CCR0=%d CCR1=%d", last.Tone.Period, last.Tone.Compare)))
	lines = append(lines, "")

	lines = append(lines, StyleLabel.Render("  Capture   ")+
		StyleValue.Render(fmt.Sprintf("%d -> %d", last.Start, last.End)))
	elapsed := fmt.Sprintf("%d ticks", last.Elapsed)
	if last.Unpaired {
		elapsed += " (unpaired)"
	}
	lines = append(lines, StyleLabel.Render("  Elapsed   ")+StyleValue.Render(elapsed))
	lines = append(lines, "")

	barWidth := innerW - 12
	if barWidth < 10 {
		barWidth = 10
	}
	lines = append(lines, StyleLabel.Render("  Range ")+renderRangeBar(last.Distance, snap.HasLast, barWidth))

	if len(r.History) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, "", StyleLabel.Render("  History:"))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(renderSparkline(r.History, sparkW)))
	}

	// Pad to fill height
	for len(lines) < height-2 {
		lines = append(lines, "")
	}

	return StylePanelBorder.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func renderLED(name string, on bool) string {
	if on {
		return StyleLEDOn.Render("(*) " + name)
	}
	return StyleLEDOff.Render("( ) " + name)
}

func toneLabel(r sonar.Reading) string {
	if r.Tone.Silent() {
		return "silent"
	}
	return fmt.Sprintf("%d -> %.0f Hz", r.Frequency, sonar.PitchHz(r.Tone.Period))
}

// renderRangeBar fills more of the bar the closer the target is.
func renderRangeBar(cm float64, ok bool, width int) string {
	ratio := 0.0
	if ok && !math.IsNaN(cm) {
		ratio = 1 - cm/config.MaxDisplayCm
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	bar := strings.Repeat("|", filled) + strings.Repeat("-", width-filled)
	filledPart := lipgloss.NewStyle().Foreground(proximityColor(cm)).Render(bar[:filled])
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(bar[filled:])
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func proximityColor(cm float64) lipgloss.Color {
	switch sonar.Classify(cm) {
	case sonar.ZoneVeryNear:
		return ColorError
	case sonar.ZoneNear:
		return ColorWarning
	case sonar.ZoneMedium:
		return ColorMatrixGreen
	default:
		return ColorMidGreen
	}
}

// renderSparkline draws the last width values. Closer readings draw lower.
func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	start := 0
	if len(values) > width {
		start = len(values) - width
	}
	values = values[start:]

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm ago", int(d.Minutes()))
}

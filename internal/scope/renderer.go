package scope

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/sonar"
)

var (
	colorBright   = lipgloss.Color("#00FF41")
	colorMid      = lipgloss.Color("#008F11")
	colorDim      = lipgloss.Color("#004A0A")
	colorMedium   = lipgloss.Color("#00CC33")
	colorNear     = lipgloss.Color("#FFAA00")
	colorVeryNear = lipgloss.Color("#FF3300")

	styleSensor   = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleBoundary = lipgloss.NewStyle().Foreground(colorMid)
	styleScale    = lipgloss.NewStyle().Foreground(colorMid)
	styleTarget   = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
)

// ZoneColor returns the color the scope uses for zone z.
func ZoneColor(z sonar.Zone) lipgloss.Color {
	switch z {
	case sonar.ZoneMedium:
		return colorMedium
	case sonar.ZoneNear:
		return colorNear
	case sonar.ZoneVeryNear:
		return colorVeryNear
	default:
		return colorDim
	}
}

// Frame is what one scope frame shows.
type Frame struct {
	Target    float64 // cm of the last reading
	HasTarget bool
	Zone      sonar.Zone
	Ping      *Ping
}

// Render produces the beam display as a styled string. The sensor sits on
// the left edge and the beam extends to MaxDisplayCm on the right.
func Render(width, height int, f Frame) string {
	if width < 10 || height < 3 {
		return ""
	}

	beamRows := height - 1
	midRow := beamRows / 2
	boundaries := make(map[int]bool)
	for _, col := range BoundaryColumns(width - 1) {
		boundaries[col+1] = true
	}
	targetCol := -1
	if f.HasTarget {
		targetCol = 1 + CmToColumn(f.Target, width-1)
	}

	var sb strings.Builder
	for row := 0; row < beamRows; row++ {
		for col := 0; col < width; col++ {
			sb.WriteString(renderCell(col, row, width, midRow, targetCol, boundaries, f))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(RenderScale(width))
	return sb.String()
}

func renderCell(col, row, width, midRow, targetCol int, boundaries map[int]bool, f Frame) string {
	if col == 0 {
		if row == midRow {
			return styleSensor.Render("[")
		}
		return styleSensor.Render("|")
	}

	beamCol := col - 1
	if col == targetCol {
		return renderTarget(f.Zone, row == midRow)
	}
	if boundaries[col] {
		return styleBoundary.Render(":")
	}

	zone := ColumnZone(beamCol, width-1)
	ch := "."
	if row == midRow {
		ch = "-"
	}
	if f.Ping != nil {
		if intensity := f.Ping.Intensity(Fraction(beamCol, width-1)); intensity > 0 {
			return renderPingChar(ch, intensity)
		}
	}
	return lipgloss.NewStyle().Foreground(ZoneColor(zone)).Render(ch)
}

func renderTarget(z sonar.Zone, center bool) string {
	if center {
		return styleTarget.Background(ZoneColor(z)).Render("#")
	}
	return lipgloss.NewStyle().Foreground(ZoneColor(z)).Bold(true).Render("#")
}

func renderPingChar(ch string, intensity float64) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(pingColor(intensity))).Render(ch)
}

func pingColor(intensity float64) string {
	if intensity > 0.8 {
		return "#00FF41"
	}
	if intensity > 0.5 {
		return "#00CC33"
	}
	if intensity > 0.3 {
		return "#00AA22"
	}
	return "#005511"
}

// RenderScale produces the distance ruler under the beam.
func RenderScale(width int) string {
	if width < 10 {
		return ""
	}
	line := []rune(strings.Repeat(" ", width))
	marks := []float64{0, config.NearFromCm, config.MediumFromCm, config.FarAboveCm, config.MaxDisplayCm}
	for _, cm := range marks {
		label := fmt.Sprintf("%.0f", cm)
		if cm == config.MaxDisplayCm {
			label += "cm"
		}
		start := 1 + CmToColumn(cm, width-1)
		if start+len(label) > width {
			start = width - len(label)
		}
		for i, r := range label {
			if start+i >= 0 && start+i < width {
				line[start+i] = r
			}
		}
	}
	return styleScale.Render(string(line))
}

// RenderLegend produces the zone legend line.
func RenderLegend(width int) string {
	zones := []sonar.Zone{sonar.ZoneVeryNear, sonar.ZoneNear, sonar.ZoneMedium, sonar.ZoneFar}
	legend := " "
	for _, z := range zones {
		legend += "  " + lipgloss.NewStyle().Foreground(ZoneColor(z)).Render("# "+z.String())
	}

	pad := (width - lipgloss.Width(legend)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + legend
}

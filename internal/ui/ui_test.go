package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	qt "github.com/frankban/quicktest"

	"sonar-prox.klederson.com/internal/sonar"
)

func TestRenderSparkline(t *testing.T) {
	c := qt.New(t)
	c.Assert(renderSparkline(nil, 10), qt.Equals, "")
	c.Assert(renderSparkline([]float64{0, 10, 20, 30, 40}, 10), qt.Equals, "_.-~^")
	// Only the last width values are drawn and scaled.
	c.Assert(renderSparkline([]float64{100, 0, 40}, 2), qt.Equals, "_^")
	c.Assert(renderSparkline([]float64{5, 5, 5}, 10), qt.Equals, "___")
}

func TestRenderRangeBar(t *testing.T) {
	c := qt.New(t)
	full := renderRangeBar(0, true, 10)
	c.Assert(strings.Count(full, "|"), qt.Equals, 10)
	empty := renderRangeBar(0, false, 10)
	c.Assert(strings.Count(empty, "-"), qt.Equals, 10)
	far := renderRangeBar(200, true, 10)
	c.Assert(strings.Count(far, "|"), qt.Equals, 0)
	half := renderRangeBar(35, true, 10)
	c.Assert(strings.Count(half, "|"), qt.Equals, 5)
}

func TestFormatAge(t *testing.T) {
	c := qt.New(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.Assert(formatAge(time.Time{}, now), qt.Equals, "never")
	c.Assert(formatAge(now.Add(-300*time.Millisecond), now), qt.Equals, "now")
	c.Assert(formatAge(now.Add(-42*time.Second), now), qt.Equals, "42s ago")
	c.Assert(formatAge(now.Add(-3*time.Minute), now), qt.Equals, "3m ago")
}

func TestToneLabel(t *testing.T) {
	c := qt.New(t)
	c.Assert(toneLabel(sonar.Reading{}), qt.Equals, "silent")
	r := sonar.Measure(0, sonar.TicksForDistance(0.01), 12582)
	r.Tone = sonar.ToneFor(r.Frequency)
	c.Assert(strings.HasPrefix(toneLabel(r), "209 -> "), qt.IsTrue, qt.Commentf("%s", toneLabel(r)))
}

func TestRenderReadoutPanel(t *testing.T) {
	c := qt.New(t)
	r := sonar.Measure(100, 1200, 12582)
	out := RenderReadoutPanel(Readout{
		Snapshot: sonar.Snapshot{Last: r, HasLast: true, Cycles: 1},
		Target:   17.8,
		History:  []float64{20, 19, 18},
		Now:      time.Now(),
	}, 40, 30)

	c.Assert(strings.Contains(out, "17.84 cm"), qt.IsTrue)
	c.Assert(strings.Contains(out, "Near"), qt.IsTrue)
	c.Assert(strings.Contains(out, "1100 ticks"), qt.IsTrue)
	c.Assert(strings.Contains(out, "(*) A"), qt.IsTrue)
	c.Assert(strings.Contains(out, "( ) B"), qt.IsTrue)
	c.Assert(lipgloss.Height(out), qt.Equals, 30)
}

func TestRenderStatusBar(t *testing.T) {
	c := qt.New(t)
	ok := RenderStatusBar(120, true, sonar.Snapshot{Cycles: 4}, 0)
	c.Assert(strings.Contains(ok, "[PINGING]"), qt.IsTrue)
	c.Assert(strings.Contains(ok, "Cycles: 4"), qt.IsTrue)
	c.Assert(strings.Contains(ok, "State: Armed"), qt.IsTrue)

	bad := RenderStatusBar(120, true, sonar.Snapshot{Unpaired: 1}, 0)
	c.Assert(strings.Contains(bad, "[GLITCHED]"), qt.IsTrue)

	paused := RenderStatusBar(120, false, sonar.Snapshot{}, 3)
	c.Assert(strings.Contains(paused, "[PAUSED]"), qt.IsTrue)
	c.Assert(strings.Contains(paused, "Dropped: 3"), qt.IsTrue)
	for _, bar := range []string{ok, bad, paused} {
		c.Assert(lipgloss.Height(bar), qt.Equals, 1)
		c.Assert(lipgloss.Width(bar), qt.Equals, 120)
	}
}

func TestRenderMenuBar(t *testing.T) {
	c := qt.New(t)
	out := RenderMenuBar(120, "sim", true)
	c.Assert(strings.Contains(out, "SONAR-PROX v1.0"), qt.IsTrue)
	c.Assert(strings.Contains(out, "Board: sim"), qt.IsTrue)
	c.Assert(strings.Contains(out, "LIVE"), qt.IsTrue)
	c.Assert(lipgloss.Width(out), qt.Equals, 120)
	c.Assert(lipgloss.Height(out), qt.Equals, 1)

	paused := RenderMenuBar(120, "sim", false)
	c.Assert(strings.Contains(paused, "PAUSED"), qt.IsTrue)
	c.Assert(lipgloss.Height(paused), qt.Equals, 1)
}

package config

import (
	"math"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestTriggerTiming(t *testing.T) {
	c := qt.New(t)
	hz := float64(TimerClockHz) / TriggerPeriodTicks
	c.Assert(math.Abs(hz-17) < 0.001, qt.IsTrue, qt.Commentf("trigger rate %f Hz", hz))
	pulse := float64(TriggerPulseTicks) / TimerClockHz
	c.Assert(pulse > 19e-6 && pulse < 20e-6, qt.IsTrue, qt.Commentf("pulse %g s", pulse))
}

func TestCaptureWindow(t *testing.T) {
	c := qt.New(t)
	window := float64(CapturePeriodTicks) / TimerClockHz
	c.Assert(math.Abs(window-CaptureWindowSec) < 1e-6, qt.IsTrue, qt.Commentf("window %g s", window))
}

func TestZoneOrder(t *testing.T) {
	c := qt.New(t)
	c.Assert(NearFromCm < MediumFromCm, qt.IsTrue)
	c.Assert(MediumFromCm < FarAboveCm, qt.IsTrue)
	c.Assert(FarAboveCm <= MaxDisplayCm, qt.IsTrue)
	c.Assert(SnapshotPeriod, qt.Equals, time.Second/30)
}

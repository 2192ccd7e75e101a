package sonar

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
)

var (
	rising  = hw.SourceFor(config.EchoRisingChannel)
	falling = hw.SourceFor(config.EchoFallingChannel)
)

func TestEngineConfigure(t *testing.T) {
	c := qt.New(t)
	timer := hw.NewSimCaptureTimer(config.TimerClockHz, 4)
	e := NewEngine(config.CapturePeriodTicks)
	c.Assert(e.Configure(timer), qt.IsNil)
	c.Assert(timer.Period(), qt.Equals, uint16(config.CapturePeriodTicks))

	// One edge of each kind reaches exactly one channel.
	c.Assert(timer.Edge(hw.EdgeRising, 10), qt.Equals, 1)
	c.Assert(timer.Edge(hw.EdgeFalling, 20), qt.Equals, 1)
	c.Assert(<-timer.Captures(), qt.Equals, hw.Capture{Source: rising, Count: 10})
	c.Assert(<-timer.Captures(), qt.Equals, hw.Capture{Source: falling, Count: 20})
}

func TestEngineCycle(t *testing.T) {
	c := qt.New(t)
	e := NewEngine(config.CapturePeriodTicks)
	c.Assert(e.State(), qt.Equals, StateArmed)

	_, done := e.Handle(hw.Capture{Source: rising, Count: 100})
	c.Assert(done, qt.IsFalse)
	c.Assert(e.State(), qt.Equals, StateTiming)

	r, done := e.Handle(hw.Capture{Source: falling, Count: 1200})
	c.Assert(done, qt.IsTrue)
	c.Assert(e.State(), qt.Equals, StateArmed)
	c.Assert(r.Start, qt.Equals, uint16(100))
	c.Assert(r.End, qt.Equals, uint16(1200))
	c.Assert(r.Elapsed, qt.Equals, uint16(1100))
	c.Assert(r.Distance, qt.Equals, Distance(1100))
	c.Assert(r.Zone, qt.Equals, ZoneNear)
	c.Assert(r.Indicators, qt.Equals, Indicators{A: true})
	c.Assert(r.Frequency, qt.Equals, ToneFrequency(Distance(1100)))
	c.Assert(r.Tone, qt.Equals, ToneFor(r.Frequency))
	c.Assert(r.Unpaired, qt.IsFalse)
}

func TestEngineWrappedCycle(t *testing.T) {
	c := qt.New(t)
	e := NewEngine(config.CapturePeriodTicks)
	e.Handle(hw.Capture{Source: rising, Count: 12000})
	r, done := e.Handle(hw.Capture{Source: falling, Count: 500})
	c.Assert(done, qt.IsTrue)
	c.Assert(r.Elapsed, qt.Equals, uint16(1082))
}

func TestEngineIgnoresUnknownSources(t *testing.T) {
	c := qt.New(t)
	e := NewEngine(config.CapturePeriodTicks)
	e.Handle(hw.Capture{Source: rising, Count: 300})

	for _, src := range []hw.Source{hw.SourceNone, hw.SourceOverflow, hw.SourceFor(3), 0x03, 0x0C, 0xFF} {
		_, done := e.Handle(hw.Capture{Source: src, Count: 9000})
		c.Assert(done, qt.IsFalse, qt.Commentf("source %s", src))
		c.Assert(e.State(), qt.Equals, StateTiming)
	}

	r, done := e.Handle(hw.Capture{Source: falling, Count: 400})
	c.Assert(done, qt.IsTrue)
	c.Assert(r.Start, qt.Equals, uint16(300))
	c.Assert(r.Elapsed, qt.Equals, uint16(100))
}

func TestEngineFallingWithoutRising(t *testing.T) {
	c := qt.New(t)
	e := NewEngine(config.CapturePeriodTicks)

	// Nothing captured yet: the stale start is the zero value.
	r, done := e.Handle(hw.Capture{Source: falling, Count: 500})
	c.Assert(done, qt.IsTrue)
	c.Assert(r.Unpaired, qt.IsTrue)
	c.Assert(r.Start, qt.Equals, uint16(0))
	c.Assert(r.Elapsed, qt.Equals, uint16(500))

	// A complete cycle, then a stray falling edge reuses its start.
	e.Handle(hw.Capture{Source: rising, Count: 1000})
	r, _ = e.Handle(hw.Capture{Source: falling, Count: 1100})
	c.Assert(r.Unpaired, qt.IsFalse)

	r, done = e.Handle(hw.Capture{Source: falling, Count: 4000})
	c.Assert(done, qt.IsTrue)
	c.Assert(r.Unpaired, qt.IsTrue)
	c.Assert(r.Start, qt.Equals, uint16(1000))
	c.Assert(r.Elapsed, qt.Equals, uint16(3000))
}

func TestEngineMissingFallingEdge(t *testing.T) {
	c := qt.New(t)
	e := NewEngine(config.CapturePeriodTicks)

	e.Handle(hw.Capture{Source: rising, Count: 100})
	// No falling edge: the engine stays in Timing with no timeout.
	c.Assert(e.State(), qt.Equals, StateTiming)

	// The next rising edge restarts the cycle.
	e.Handle(hw.Capture{Source: rising, Count: 5000})
	c.Assert(e.State(), qt.Equals, StateTiming)
	r, _ := e.Handle(hw.Capture{Source: falling, Count: 5200})
	c.Assert(r.Start, qt.Equals, uint16(5000))
	c.Assert(r.Elapsed, qt.Equals, uint16(200))
	c.Assert(r.Unpaired, qt.IsFalse)
}

func TestMeasureFarIsSilent(t *testing.T) {
	c := qt.New(t)
	r := Measure(0, TicksForDistance(60), config.CapturePeriodTicks)
	c.Assert(r.Zone, qt.Equals, ZoneFar)
	c.Assert(r.Indicators, qt.Equals, Indicators{})
	c.Assert(r.Frequency, qt.Equals, uint32(0))
	c.Assert(r.Tone.Silent(), qt.IsTrue)
}

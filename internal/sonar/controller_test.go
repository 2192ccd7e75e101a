package sonar

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
)

func newTestController(c *qt.C) (*Controller, *hw.SimBoard, *Monitor, *test.Hook) {
	board := hw.NewSimBoard(config.TimerClockHz)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)
	mon := NewMonitor()
	ctrl := NewController(board.Board(), Options{Log: log, Monitor: mon})
	c.Assert(ctrl.Start(), qt.IsNil)
	return ctrl, board, mon, hook
}

func TestControllerStart(t *testing.T) {
	c := qt.New(t)
	_, board, _, hook := newTestController(c)

	period, duty, running := board.Trigger.Config()
	c.Assert(running, qt.IsTrue)
	c.Assert(period, qt.Equals, uint16(61680))
	c.Assert(duty, qt.Equals, uint16(20))
	c.Assert(board.Echo.Period(), qt.Equals, uint16(12582))

	tonePeriod, toneDuty := board.Tone.Registers()
	c.Assert(tonePeriod, qt.Equals, uint16(0))
	c.Assert(toneDuty, qt.Equals, uint16(0))
	c.Assert(board.IndicatorA.Get(), qt.IsFalse)
	c.Assert(board.IndicatorB.Get(), qt.IsFalse)

	c.Assert(hook.LastEntry().Message, qt.Equals, "sonar armed")
}

func TestControllerStartTwice(t *testing.T) {
	c := qt.New(t)
	ctrl, _, _, _ := newTestController(c)
	c.Assert(ctrl.Start(), qt.ErrorIs, ErrTriggerArmed)
}

func TestControllerStartBoardInitError(t *testing.T) {
	c := qt.New(t)
	board := hw.NewSimBoard(config.TimerClockHz).Board()
	errInit := errors.New("no pull-ups")
	board.Init = func() error { return errInit }
	ctrl := NewController(board, Options{})
	err := ctrl.Start()
	c.Assert(err, qt.ErrorIs, errInit)
	c.Assert(err, qt.ErrorMatches, "sonar: board init: no pull-ups")
}

func TestControllerEndToEnd(t *testing.T) {
	c := qt.New(t)
	ctrl, board, mon, hook := newTestController(c)

	_, done := ctrl.Handle(hw.Capture{Source: rising, Count: 100})
	c.Assert(done, qt.IsFalse)
	r, done := ctrl.Handle(hw.Capture{Source: falling, Count: 1200})
	c.Assert(done, qt.IsTrue)

	c.Assert(r.Elapsed, qt.Equals, uint16(1100))
	c.Assert(r.Distance > 17.8 && r.Distance < 17.9, qt.IsTrue, qt.Commentf("cm %f", r.Distance))
	c.Assert(r.Zone, qt.Equals, ZoneNear)

	// Near: A on, B off.
	c.Assert(board.IndicatorA.Get(), qt.IsTrue)
	c.Assert(board.IndicatorB.Get(), qt.IsFalse)

	freq := ToneFrequency(r.Distance)
	c.Assert(r.Frequency, qt.Equals, freq)
	period, duty := board.Tone.Registers()
	c.Assert(period, qt.Equals, uint16(freq))
	c.Assert(duty, qt.Equals, uint16(freq)/2)
	c.Assert(r.Tone, qt.Equals, ToneRegisters{Period: period, Compare: duty})

	snap := mon.Snapshot()
	c.Assert(snap.HasLast, qt.IsTrue)
	c.Assert(snap.Last, qt.Equals, r)
	c.Assert(snap.Cycles, qt.Equals, 1)
	c.Assert(snap.State, qt.Equals, StateArmed)

	entry := hook.LastEntry()
	c.Assert(entry.Level, qt.Equals, logrus.DebugLevel)
	c.Assert(entry.Data["zone"], qt.Equals, "Near")
	c.Assert(entry.Data["elapsed"], qt.Equals, uint16(1100))
}

// stuckTone accepts the silencing write and rejects every other setting.
type stuckTone struct{}

func (stuckTone) ConfigurePWM(period, duty uint16) error {
	if period != 0 {
		return errPWM
	}
	return nil
}

func TestControllerToneFault(t *testing.T) {
	c := qt.New(t)
	board := hw.NewSimBoard(config.TimerClockHz).Board()
	board.Tone = stuckTone{}
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)
	mon := NewMonitor()
	ctrl := NewController(board, Options{Log: log, Monitor: mon})
	c.Assert(ctrl.Start(), qt.IsNil)

	ctrl.Handle(hw.Capture{Source: rising, Count: 100})
	r, done := ctrl.Handle(hw.Capture{Source: falling, Count: 1200})
	c.Assert(done, qt.IsTrue)
	c.Assert(r.Frequency, qt.Not(qt.Equals), uint32(0))
	c.Assert(r.Tone, qt.Equals, ToneRegisters{})
	c.Assert(r.Indicators.A, qt.IsTrue)
	c.Assert(mon.Snapshot().Last.Tone, qt.Equals, ToneRegisters{})

	var faults int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "program tone timer" {
			faults++
			c.Assert(e.Data[logrus.ErrorKey], qt.Equals, errPWM)
		}
	}
	c.Assert(faults, qt.Equals, 1)
}

func TestControllerZonesDriveIndicators(t *testing.T) {
	tests := []struct {
		cm   float64
		a, b bool
	}{
		{60, false, false},
		{40, false, true},
		{20, true, false},
		{5, true, true},
	}
	for _, tt := range tests {
		t.Run(Classify(tt.cm).String(), func(t *testing.T) {
			c := qt.New(t)
			ctrl, board, _, _ := newTestController(c)
			ctrl.Handle(hw.Capture{Source: rising, Count: 0})
			ctrl.Handle(hw.Capture{Source: falling, Count: TicksForDistance(tt.cm)})
			c.Assert(board.IndicatorA.Get(), qt.Equals, tt.a)
			c.Assert(board.IndicatorB.Get(), qt.Equals, tt.b)
		})
	}
}

func TestControllerFarSilencesTone(t *testing.T) {
	c := qt.New(t)
	ctrl, board, _, _ := newTestController(c)
	ctrl.Handle(hw.Capture{Source: rising, Count: 0})
	ctrl.Handle(hw.Capture{Source: falling, Count: TicksForDistance(20)})
	period, _ := board.Tone.Registers()
	c.Assert(period, qt.Not(qt.Equals), uint16(0))

	ctrl.Handle(hw.Capture{Source: rising, Count: 0})
	ctrl.Handle(hw.Capture{Source: falling, Count: TicksForDistance(80)})
	period, duty := board.Tone.Registers()
	c.Assert(period, qt.Equals, uint16(0))
	c.Assert(duty, qt.Equals, uint16(0))
}

func TestControllerUnpairedAndIgnored(t *testing.T) {
	c := qt.New(t)
	ctrl, _, mon, hook := newTestController(c)

	ctrl.Handle(hw.Capture{Source: hw.SourceOverflow})
	ctrl.Handle(hw.Capture{Source: hw.SourceNone})
	r, done := ctrl.Handle(hw.Capture{Source: falling, Count: 800})
	c.Assert(done, qt.IsTrue)
	c.Assert(r.Unpaired, qt.IsTrue)
	c.Assert(hook.LastEntry().Level, qt.Equals, logrus.WarnLevel)

	ctrl.Handle(hw.Capture{Source: rising, Count: 10})
	ctrl.Handle(hw.Capture{Source: rising, Count: 20})
	c.Assert(ctrl.State(), qt.Equals, StateTiming)

	snap := mon.Snapshot()
	c.Assert(snap.Ignored, qt.Equals, 2)
	c.Assert(snap.Unpaired, qt.Equals, 1)
	c.Assert(snap.Restarts, qt.Equals, 1)
	c.Assert(snap.Cycles, qt.Equals, 1)
	c.Assert(snap.State, qt.Equals, StateTiming)
	c.Assert(snap.LastEvent, qt.Equals, hw.Capture{Source: rising, Count: 20})
}

func TestControllerRun(t *testing.T) {
	c := qt.New(t)
	board := hw.NewSimBoard(config.TimerClockHz)
	readings := make(chan Reading, 1)
	ctrl := NewController(board.Board(), Options{
		OnReading: func(r Reading) { readings <- r },
	})
	c.Assert(ctrl.Start(), qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- ctrl.Run(ctx) }()

	board.Echo.Edge(hw.EdgeRising, 12000)
	board.Echo.Edge(hw.EdgeFalling, 500)

	select {
	case r := <-readings:
		c.Assert(r.Elapsed, qt.Equals, uint16(1082))
	case <-time.After(5 * time.Second):
		c.Fatal("no reading from Run")
	}

	cancel()
	c.Assert(<-errc, qt.ErrorIs, context.Canceled)
}

func TestControllerRunStreamClosed(t *testing.T) {
	c := qt.New(t)
	board := hw.NewSimBoard(config.TimerClockHz)
	ctrl := NewController(board.Board(), Options{})
	c.Assert(ctrl.Start(), qt.IsNil)

	board.Echo.Edge(hw.EdgeRising, 1)
	board.Echo.Close()
	c.Assert(ctrl.Run(context.Background()), qt.IsNil)
	c.Assert(ctrl.State(), qt.Equals, StateTiming)
}

func TestTriggerArmOnce(t *testing.T) {
	c := qt.New(t)
	timer := hw.NewSimPulseTimer(config.TimerClockHz)
	trig := NewTrigger(timer)
	c.Assert(trig.Armed(), qt.IsFalse)
	c.Assert(trig.Arm(), qt.IsNil)
	c.Assert(trig.Armed(), qt.IsTrue)
	c.Assert(trig.Arm(), qt.ErrorIs, ErrTriggerArmed)

	// The running timer also refuses a second generator.
	err := NewTrigger(timer).Arm()
	c.Assert(err, qt.ErrorIs, hw.ErrRunning)

	// 61680 ticks at 1048576 Hz is one seventeenth of a second.
	interval := timer.Interval()
	c.Assert(interval > 58*time.Millisecond && interval < 59*time.Millisecond, qt.IsTrue,
		qt.Commentf("interval %v", interval))
	c.Assert(timer.Width() > 19*time.Microsecond && timer.Width() < 20*time.Microsecond, qt.IsTrue)
}

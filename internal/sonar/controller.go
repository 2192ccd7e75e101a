package sonar

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
)

// Options tunes a Controller. The zero value is usable.
type Options struct {
	Log       logrus.FieldLogger // defaults to a discarding logger
	Monitor   *Monitor           // optional snapshot sink
	OnReading func(Reading)      // called on the controller goroutine
}

// Controller runs the measurement loop: it arms the trigger, configures the
// capture and tone timers, and handles every capture event to completion.
type Controller struct {
	board   hw.Board
	trigger *Trigger
	engine  *Engine
	log     logrus.FieldLogger
	monitor *Monitor
	notify  func(Reading)
}

// NewController creates a controller for board.
func NewController(board hw.Board, opts Options) *Controller {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Controller{
		board:   board,
		trigger: NewTrigger(board.Trigger),
		engine:  NewEngine(config.CapturePeriodTicks),
		log:     log,
		monitor: opts.Monitor,
		notify:  opts.OnReading,
	}
}

// Start performs the one-time configuration of the board. It must be
// called once before Run.
func (c *Controller) Start() error {
	if c.board.Init != nil {
		if err := c.board.Init(); err != nil {
			return fmt.Errorf("sonar: board init: %w", err)
		}
	}
	if err := c.trigger.Arm(); err != nil {
		return err
	}
	if err := c.engine.Configure(c.board.Echo); err != nil {
		return err
	}
	if _, err := DriveTone(c.board.Tone, 0); err != nil {
		return fmt.Errorf("sonar: silence tone: %w", err)
	}
	c.setIndicators(Indicators{})

	c.log.WithFields(logrus.Fields{
		"trigger_period": config.TriggerPeriodTicks,
		"trigger_pulse":  config.TriggerPulseTicks,
		"capture_period": config.CapturePeriodTicks,
		"clock_hz":       config.TimerClockHz,
	}).Info("sonar armed")
	return nil
}

// Run consumes capture events until ctx is done or the event stream is
// closed. A cycle missing its falling edge waits here indefinitely.
func (c *Controller) Run(ctx context.Context) error {
	events := c.board.Echo.Captures()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(ev)
		}
	}
}

// Handle processes one capture event synchronously and, when it completes a
// cycle, drives the indicators and the tone timer.
func (c *Controller) Handle(ev hw.Capture) (Reading, bool) {
	prev := c.engine.State()
	r, done := c.engine.Handle(ev)
	if c.monitor != nil {
		c.monitor.observe(ev, prev, c.engine.State())
	}
	if !done {
		c.log.WithFields(logrus.Fields{
			"source": ev.Source.String(),
			"count":  ev.Count,
			"state":  c.engine.State().String(),
		}).Trace("capture")
		return r, false
	}

	c.setIndicators(r.Indicators)
	// Tone holds what the timer actually runs, so a failed write leaves it zero.
	if regs, err := DriveTone(c.board.Tone, r.Frequency); err != nil {
		c.log.WithError(err).WithField("tone", r.Frequency).Error("program tone timer")
	} else {
		r.Tone = regs
	}

	entry := c.log.WithFields(logrus.Fields{
		"start":   r.Start,
		"end":     r.End,
		"elapsed": r.Elapsed,
		"cm":      fmt.Sprintf("%.2f", r.Distance),
		"zone":    r.Zone.String(),
		"tone":    r.Frequency,
	})
	if r.Unpaired {
		entry.Warn("falling edge without rising edge")
	} else {
		entry.Debug("reading")
	}

	if c.monitor != nil {
		c.monitor.record(r)
	}
	if c.notify != nil {
		c.notify(r)
	}
	return r, true
}

// State returns the capture engine state. Only meaningful on the
// controller goroutine.
func (c *Controller) State() CaptureState {
	return c.engine.State()
}

func (c *Controller) setIndicators(ind Indicators) {
	if c.board.IndicatorA != nil {
		c.board.IndicatorA.Set(ind.A)
	}
	if c.board.IndicatorB != nil {
		c.board.IndicatorB.Set(ind.B)
	}
}

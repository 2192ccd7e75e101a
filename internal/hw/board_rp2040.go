//go:build tinygo && rp2040

package hw

import (
	"device/rp"
	"machine"
	"time"
)

// Pin assignment of the pico build.
const (
	PicoTriggerPin = machine.GP2 // PWM slice 1 A
	PicoEchoPin    = machine.GP3
	PicoTonePin    = machine.GP4 // PWM slice 2 A
	PicoLEDAPin    = machine.GP14
	PicoLEDBPin    = machine.GP15
	PicoSwitch1Pin = machine.GP20
	PicoSwitch2Pin = machine.GP21
)

// pwmGroup is the subset of a TinyGo PWM slice we use.
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Set(channel uint8, value uint32)
	SetPeriod(period uint64) error
	Top() uint32
}

// PicoPWM drives one pin from a PWM slice, with periods given in ticks of
// the controller's timer clock.
type PicoPWM struct {
	group      pwmGroup
	pin        machine.Pin
	ch         uint8
	clockHz    int
	configured bool
	periodic   bool
}

func (p *PicoPWM) setup(period uint16) error {
	ns := periodNanos(period, p.clockHz)
	if !p.configured {
		if err := p.group.Configure(machine.PWMConfig{Period: ns}); err != nil {
			return err
		}
		ch, err := p.group.Channel(p.pin)
		if err != nil {
			return err
		}
		p.ch, p.configured = ch, true
		return nil
	}
	return p.group.SetPeriod(ns)
}

func (p *PicoPWM) ConfigurePeriodic(period, duty uint16) error {
	if p.periodic {
		return ErrRunning
	}
	if err := p.setup(period); err != nil {
		return err
	}
	p.group.Set(p.ch, scaleDuty(p.group.Top(), period, duty))
	p.periodic = true
	return nil
}

func (p *PicoPWM) ConfigurePWM(period, duty uint16) error {
	if period == 0 {
		if p.configured {
			p.group.Set(p.ch, 0)
		}
		return nil
	}
	if err := p.setup(period); err != nil {
		return err
	}
	p.group.Set(p.ch, scaleDuty(p.group.Top(), period, duty))
	return nil
}

// PicoCapture timestamps echo edges from a pin interrupt against a counter
// derived from the 1 MHz system timer.
type PicoCapture struct {
	pin     machine.Pin
	clockHz int
	period  uint16
	edges   [MaxChannel + 1]Edge
	events  chan Capture
	armed   bool
}

func (c *PicoCapture) ConfigureCapture(period uint16, ch Channel, edge Edge) error {
	if ch == 0 || ch > MaxChannel {
		return ErrChannel
	}
	c.period = period
	c.edges[ch] = edge
	if c.armed {
		return nil
	}
	c.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	if err := c.pin.SetInterrupt(machine.PinToggle, c.interrupt); err != nil {
		return err
	}
	c.armed = true
	return nil
}

func (c *PicoCapture) Captures() <-chan Capture {
	return c.events
}

func (c *PicoCapture) interrupt(pin machine.Pin) {
	count := c.count()
	edge := EdgeFalling
	if pin.Get() {
		edge = EdgeRising
	}
	for ch := Channel(1); ch <= MaxChannel; ch++ {
		if c.edges[ch] != edge {
			continue
		}
		select {
		case c.events <- Capture{Source: SourceFor(ch), Count: count}:
		default:
			// queue full; the event is lost like an overrun capture
		}
	}
}

// count derives the capture counter from the 1 MHz system timer.
func (c *PicoCapture) count() uint16 {
	us := read64(rp.TIMER.TIMERAWH.Get, rp.TIMER.TIMERAWL.Get)
	return counterAt(time.Duration(us)*time.Microsecond, c.clockHz, c.period)
}

type picoPin machine.Pin

func (p picoPin) Set(high bool) { machine.Pin(p).Set(high) }

// NewPicoBoard binds the controller to the pico pins above.
func NewPicoBoard(clockHz int) Board {
	for _, p := range []machine.Pin{PicoLEDAPin, PicoLEDBPin} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	return Board{
		Trigger:    &PicoPWM{group: machine.PWM1, pin: PicoTriggerPin, clockHz: clockHz},
		Echo:       &PicoCapture{pin: PicoEchoPin, clockHz: clockHz, events: make(chan Capture, 4)},
		Tone:       &PicoPWM{group: machine.PWM2, pin: PicoTonePin, clockHz: clockHz},
		IndicatorA: picoPin(PicoLEDAPin),
		IndicatorB: picoPin(PicoLEDBPin),
		Init: func() error {
			// S1 and S2 are wired but unused.
			PicoSwitch1Pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
			PicoSwitch2Pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
			return nil
		},
	}
}

func periodNanos(period uint16, clockHz int) uint64 {
	return uint64(period) * 1e9 / uint64(clockHz)
}

func scaleDuty(top uint32, period, duty uint16) uint32 {
	if period == 0 {
		return 0
	}
	return uint32(uint64(top) * uint64(duty) / uint64(period))
}

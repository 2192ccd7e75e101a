package hw

import (
	"errors"
	"fmt"
)

var (
	// ErrRunning is returned when a timer that is already generating output
	// is configured again.
	ErrRunning = errors.New("hw: timer already running")
	// ErrChannel is returned for a capture or compare channel the timer lacks.
	ErrChannel = errors.New("hw: no such channel")
	// ErrNoAudio is returned when host audio playback is not compiled in.
	ErrNoAudio = errors.New("hw: audio output unavailable")
)

// Edge selects which transition of an input a capture channel latches.
type Edge uint8

const (
	EdgeRising Edge = iota + 1
	EdgeFalling
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	default:
		return fmt.Sprintf("edge(%d)", uint8(e))
	}
}

// Channel is a capture/compare channel number. Channel 0 holds the period
// register and cannot capture.
type Channel uint8

// MaxChannel is the highest capture/compare channel on a timer.
const MaxChannel Channel = 6

// Source is the interrupt vector code of a timer event. Capture channel n
// reports as 2n, the counter overflow as SourceOverflow.
type Source uint8

const (
	SourceNone     Source = 0x00
	SourceOverflow Source = 0x0E
)

// SourceFor returns the vector code raised by a capture channel.
func SourceFor(ch Channel) Source {
	return Source(2 * ch)
}

// Channel returns the capture channel behind a vector code, or 0 when the
// code belongs to no channel.
func (s Source) Channel() Channel {
	if s == SourceNone || s >= SourceOverflow || s%2 != 0 {
		return 0
	}
	return Channel(s / 2)
}

func (s Source) String() string {
	switch {
	case s == SourceNone:
		return "none"
	case s == SourceOverflow:
		return "overflow"
	case s.Channel() != 0:
		return fmt.Sprintf("CCR%d", s.Channel())
	default:
		return fmt.Sprintf("0x%02X", uint8(s))
	}
}

// Capture is one event raised by a capture timer: the vector code and the
// counter value latched at the edge.
type Capture struct {
	Source Source
	Count  uint16
}

// PeriodicTimer is an up-counting timer whose compare output produces a
// pulse train without software attention.
type PeriodicTimer interface {
	// ConfigurePeriodic starts the timer with the given period register and
	// compare value, both in ticks.
	ConfigurePeriodic(period, duty uint16) error
}

// CaptureTimer is a free-running up-counting timer with edge capture.
type CaptureTimer interface {
	// ConfigureCapture sets the counter period and binds a capture channel
	// to an edge of the echo input. Every capture raises an event.
	ConfigureCapture(period uint16, ch Channel, edge Edge) error
	// Captures returns the single event stream shared by all channels.
	Captures() <-chan Capture
}

// PWMTimer is a timer driving an output through its compare channel.
type PWMTimer interface {
	// ConfigurePWM programs the period register and compare value. A zero
	// period stops the oscillation.
	ConfigurePWM(period, duty uint16) error
}

// Pin is a digital output.
type Pin interface {
	Set(high bool)
}

// Board bundles the peripherals the controller drives.
type Board struct {
	Trigger    PeriodicTimer
	Echo       CaptureTimer
	Tone       PWMTimer
	IndicatorA Pin
	IndicatorB Pin

	// Init runs the one-time pin setup before any event is processed.
	// Nil when the board needs none.
	Init func() error
}

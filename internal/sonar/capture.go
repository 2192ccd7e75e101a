package sonar

import (
	"fmt"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
)

// CaptureState is the position of the echo capture engine within a cycle.
type CaptureState int

const (
	// StateArmed waits for the rising edge of the echo.
	StateArmed CaptureState = iota
	// StateTiming holds the rising edge and waits for the falling edge.
	StateTiming
)

func (s CaptureState) String() string {
	if s == StateTiming {
		return "Timing"
	}
	return "Armed"
}

// Reading is the outcome of one completed measurement cycle.
type Reading struct {
	Start      uint16 // rising edge count
	End        uint16 // falling edge count
	Elapsed    uint16 // ticks between the edges
	Distance   float64
	Zone       Zone
	Indicators Indicators
	Frequency  uint32 // tone period value, 0 = silence
	Tone       ToneRegisters

	// Unpaired is set when the falling edge arrived without a rising edge
	// in this cycle. The values above are then computed from the previous
	// rising edge and carry no meaning.
	Unpaired bool
}

// Measure runs the pure part of a cycle: elapsed ticks, distance, zone and
// tone value. Tone holds the registers the value maps to.
func Measure(start, end, period uint16) Reading {
	elapsed := ElapsedTicks(start, end, period)
	cm := Distance(elapsed)
	zone := Classify(cm)
	freq := ToneFrequency(cm)
	return Reading{
		Start:      start,
		End:        end,
		Elapsed:    elapsed,
		Distance:   cm,
		Zone:       zone,
		Indicators: zone.Indicators(),
		Frequency:  freq,
		Tone:       ToneFor(freq),
	}
}

// Engine is the two-state echo capture machine. It is owned by a single
// goroutine and is not safe for concurrent use.
type Engine struct {
	period uint16
	state  CaptureState
	start  uint16
}

// NewEngine creates an engine for a capture counter wrapping at period.
func NewEngine(period uint16) *Engine {
	return &Engine{period: period}
}

// Configure binds the rising edge to the first capture channel and the
// falling edge to the second, both on the echo input.
func (e *Engine) Configure(t hw.CaptureTimer) error {
	if err := t.ConfigureCapture(e.period, config.EchoRisingChannel, hw.EdgeRising); err != nil {
		return fmt.Errorf("sonar: configure rising capture: %w", err)
	}
	if err := t.ConfigureCapture(e.period, config.EchoFallingChannel, hw.EdgeFalling); err != nil {
		return fmt.Errorf("sonar: configure falling capture: %w", err)
	}
	return nil
}

// State returns the current capture state.
func (e *Engine) State() CaptureState {
	return e.state
}

// edgeKind says what an event means to the engine.
type edgeKind int

const (
	edgeIgnored edgeKind = iota
	edgeRising
	edgeFalling
)

func kindOf(src hw.Source) edgeKind {
	switch src {
	case hw.SourceFor(config.EchoRisingChannel):
		return edgeRising
	case hw.SourceFor(config.EchoFallingChannel):
		return edgeFalling
	}
	return edgeIgnored
}

// Handle processes one capture event. It returns a reading and true when
// the event completed a cycle. Codes other than the two echo channels are
// ignored.
func (e *Engine) Handle(c hw.Capture) (Reading, bool) {
	switch kindOf(c.Source) {
	case edgeRising:
		e.start = c.Count
		e.state = StateTiming
		return Reading{}, false

	case edgeFalling:
		r := Measure(e.start, c.Count, e.period)
		r.Unpaired = e.state != StateTiming
		e.state = StateArmed
		return r, true
	}
	return Reading{}, false
}

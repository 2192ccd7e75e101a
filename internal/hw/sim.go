package hw

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SimPulseTimer is a hosted stand-in for the trigger timer. Once configured
// it emits one pulse per period on Pulses while Run is active; Fire emits
// one by hand.
type SimPulseTimer struct {
	mu      sync.Mutex
	clockHz int
	period  uint16
	duty    uint16
	running bool
	pulses  chan time.Time
}

// NewSimPulseTimer creates a trigger timer clocked at clockHz.
func NewSimPulseTimer(clockHz int) *SimPulseTimer {
	return &SimPulseTimer{
		clockHz: clockHz,
		pulses:  make(chan time.Time, 1),
	}
}

// ConfigurePeriodic programs the pulse period and width in ticks and starts
// the timer. A running timer cannot be reprogrammed.
func (t *SimPulseTimer) ConfigurePeriodic(period, duty uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrRunning
	}
	if period == 0 {
		return fmt.Errorf("hw: trigger period must be non-zero")
	}
	t.period, t.duty, t.running = period, duty, true
	return nil
}

// Config returns the programmed registers.
func (t *SimPulseTimer) Config() (period, duty uint16, running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period, t.duty, t.running
}

// Interval returns the wall-clock pulse spacing, or 0 before configuration.
func (t *SimPulseTimer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ticksToDuration(uint32(t.period), t.clockHz)
}

// Width returns the wall-clock width of each pulse.
func (t *SimPulseTimer) Width() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ticksToDuration(uint32(t.duty), t.clockHz)
}

// Pulses delivers the time of each trigger pulse. A pulse nobody received
// before the next one is dropped.
func (t *SimPulseTimer) Pulses() <-chan time.Time {
	return t.pulses
}

// Fire emits one trigger pulse now.
func (t *SimPulseTimer) Fire() {
	select {
	case t.pulses <- time.Now():
	default:
	}
}

// Run emits pulses at the configured rate until ctx is done.
func (t *SimPulseTimer) Run(ctx context.Context) error {
	interval := t.Interval()
	if interval <= 0 {
		return fmt.Errorf("hw: trigger timer not configured")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Fire()
		}
	}
}

// SimCaptureTimer is a hosted capture timer. Edges are injected with Edge
// or Raise and delivered on the shared event stream like the interrupt
// vector of the real timer.
type SimCaptureTimer struct {
	mu       sync.Mutex
	clockHz  int
	period   uint16
	edges    [MaxChannel + 1]Edge
	events   chan Capture
	closed   bool
	overruns int
	epoch    time.Time
	now      func() time.Time
}

// NewSimCaptureTimer creates a capture timer clocked at clockHz whose event
// queue holds depth pending events.
func NewSimCaptureTimer(clockHz, depth int) *SimCaptureTimer {
	return newSimCaptureTimerWithClock(clockHz, depth, time.Now)
}

func newSimCaptureTimerWithClock(clockHz, depth int, now func() time.Time) *SimCaptureTimer {
	if depth < 1 {
		depth = 1
	}
	return &SimCaptureTimer{
		clockHz: clockHz,
		events:  make(chan Capture, depth),
		epoch:   now(),
		now:     now,
	}
}

// ConfigureCapture sets the counter period and binds channel ch to edge.
func (t *SimCaptureTimer) ConfigureCapture(period uint16, ch Channel, edge Edge) error {
	if ch == 0 || ch > MaxChannel {
		return fmt.Errorf("hw: capture channel %d: %w", ch, ErrChannel)
	}
	if edge != EdgeRising && edge != EdgeFalling {
		return fmt.Errorf("hw: capture channel %d: invalid %s", ch, edge)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period = period
	t.edges[ch] = edge
	return nil
}

// Captures returns the event stream shared by all channels.
func (t *SimCaptureTimer) Captures() <-chan Capture {
	return t.events
}

// Period returns the programmed counter period.
func (t *SimCaptureTimer) Period() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// Count returns the free-running counter value at the current time.
func (t *SimCaptureTimer) Count() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return counterAt(t.now().Sub(t.epoch), t.clockHz, t.period)
}

// Edge latches count on every channel bound to edge and raises one event
// per channel. It returns the number of events raised.
func (t *SimCaptureTimer) Edge(edge Edge, count uint16) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for ch := Channel(1); ch <= MaxChannel; ch++ {
		if t.edges[ch] == edge {
			t.raiseLocked(Capture{Source: SourceFor(ch), Count: count})
			n++
		}
	}
	return n
}

// Raise delivers an arbitrary event, including codes no channel produces.
func (t *SimCaptureTimer) Raise(c Capture) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.raiseLocked(c)
}

func (t *SimCaptureTimer) raiseLocked(c Capture) {
	if t.closed {
		return
	}
	select {
	case t.events <- c:
	default:
		t.overruns++
	}
}

// Overruns returns how many events were lost because the queue was full.
func (t *SimCaptureTimer) Overruns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overruns
}

// Close ends the event stream.
func (t *SimCaptureTimer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
}

// SimPWMTimer records the registers of the tone timer.
type SimPWMTimer struct {
	mu     sync.Mutex
	period uint16
	duty   uint16
	writes int
}

// ConfigurePWM records period and duty. A zero period silences the output.
func (t *SimPWMTimer) ConfigurePWM(period, duty uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period, t.duty = period, duty
	t.writes++
	return nil
}

// Registers returns the programmed period and compare values.
func (t *SimPWMTimer) Registers() (period, duty uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period, t.duty
}

// Writes returns how many times the timer was programmed.
func (t *SimPWMTimer) Writes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writes
}

// SimPin is a hosted digital output.
type SimPin struct {
	mu    sync.Mutex
	name  string
	level bool
}

// NewSimPin creates a low output named name.
func NewSimPin(name string) *SimPin {
	return &SimPin{name: name}
}

// Set drives the output high or low.
func (p *SimPin) Set(high bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = high
}

// Get returns the last level written.
func (p *SimPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// String returns the pin name.
func (p *SimPin) String() string {
	return p.name
}

// SimBoard holds the concrete simulated peripherals.
type SimBoard struct {
	Trigger    *SimPulseTimer
	Echo       *SimCaptureTimer
	Tone       *SimPWMTimer
	IndicatorA *SimPin
	IndicatorB *SimPin
}

// NewSimBoard creates a simulated board with all timers on clockHz.
func NewSimBoard(clockHz int) *SimBoard {
	return &SimBoard{
		Trigger:    NewSimPulseTimer(clockHz),
		Echo:       NewSimCaptureTimer(clockHz, 16),
		Tone:       &SimPWMTimer{},
		IndicatorA: NewSimPin("LED_A"),
		IndicatorB: NewSimPin("LED_B"),
	}
}

// Board returns the capability view of the simulated peripherals.
func (b *SimBoard) Board() Board {
	return Board{
		Trigger:    b.Trigger,
		Echo:       b.Echo,
		Tone:       b.Tone,
		IndicatorA: b.IndicatorA,
		IndicatorB: b.IndicatorB,
	}
}

func ticksToDuration(ticks uint32, clockHz int) time.Duration {
	if clockHz <= 0 {
		return 0
	}
	return time.Duration(uint64(ticks) * uint64(time.Second) / uint64(clockHz))
}

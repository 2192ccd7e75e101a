package echo

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
	"sonar-prox.klederson.com/internal/sonar"
)

// Options configures the simulated target.
type Options struct {
	Distance float64 // fixed target in cm
	Sweep    bool    // oscillate between DemoMinCm and DemoMaxCm
	Glitch   float64 // probability per pulse of a spurious falling edge
	Jitter   float64 // peak random offset in cm
	Seed     int64   // 0 picks a time-based seed
}

// Simulator answers every trigger pulse of a simulated board with an echo
// pulse on its capture timer, timed for a target at the current distance.
type Simulator struct {
	trigger *hw.SimPulseTimer
	echo    *hw.SimCaptureTimer

	mu       sync.Mutex
	base     float64
	sweep    bool
	glitch   float64
	jitter   float64
	rng      *rand.Rand
	epoch    time.Time
	last     float64
	pulses   int
	glitches int
	cancel   context.CancelFunc
}

// NewSimulator creates a target in front of board.
func NewSimulator(board *hw.SimBoard, opts Options) *Simulator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		trigger: board.Trigger,
		echo:    board.Echo,
		base:    clampCm(opts.Distance),
		sweep:   opts.Sweep,
		glitch:  opts.Glitch,
		jitter:  opts.Jitter,
		rng:     rand.New(rand.NewSource(seed)),
		epoch:   time.Now(),
	}
}

// Start runs the simulator in the background until Stop is called.
func (s *Simulator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	go s.Run(ctx)
}

// Stop halts a simulator started with Start.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Run answers trigger pulses until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case at := <-s.trigger.Pulses():
			s.Pulse(at)
		}
	}
}

// Pulse emits the echo for a trigger pulse at time at and returns the
// target distance it was timed for.
func (s *Simulator) Pulse(at time.Time) float64 {
	s.mu.Lock()
	cm := s.targetLocked(at)
	if s.jitter > 0 {
		cm += (s.rng.Float64()*2 - 1) * s.jitter
	}
	cm = clampCm(cm)
	s.last = cm
	s.pulses++
	glitch := s.glitch > 0 && s.rng.Float64() < s.glitch
	var offset uint16
	width := sonar.TicksForDistance(cm)
	if glitch {
		s.glitches++
		if width > 1 {
			offset = uint16(s.rng.Intn(int(width)-1)) + 1
		}
	}
	s.mu.Unlock()

	start := s.echo.Count()
	if !glitch {
		s.Emit(start, width)
		return cm
	}
	// A spurious falling edge inside the pulse closes the cycle early and
	// the real falling edge then arrives unpaired.
	s.echo.Edge(hw.EdgeRising, start)
	s.emitFalling(start, offset)
	s.emitFalling(start, width)
	return cm
}

// Emit raises a rising edge at start and a falling edge width ticks later,
// wrapping at the capture period.
func (s *Simulator) Emit(start, width uint16) {
	s.echo.Edge(hw.EdgeRising, start)
	s.emitFalling(start, width)
}

func (s *Simulator) emitFalling(start, width uint16) {
	period := uint32(s.echo.Period())
	if period == 0 {
		period = config.CapturePeriodTicks
	}
	end := uint16((uint32(start) + uint32(width)) % period)
	s.echo.Edge(hw.EdgeFalling, end)
}

// InjectGlitch raises a falling edge with no rising edge before it.
func (s *Simulator) InjectGlitch() {
	s.mu.Lock()
	s.glitches++
	s.mu.Unlock()
	s.echo.Edge(hw.EdgeFalling, s.echo.Count())
}

// InjectLoneRising raises a rising edge whose falling edge never comes.
func (s *Simulator) InjectLoneRising() {
	s.mu.Lock()
	s.glitches++
	s.mu.Unlock()
	s.echo.Edge(hw.EdgeRising, s.echo.Count())
}

// Nudge moves the target by delta cm and stops any sweep at the current
// position.
func (s *Simulator) Nudge(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweep {
		s.base = s.targetLocked(time.Now())
		s.sweep = false
	}
	s.base = clampCm(s.base + delta)
}

// Target returns the distance of the target without jitter at time at.
func (s *Simulator) Target(at time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetLocked(at)
}

// Last returns the distance the most recent pulse was timed for.
func (s *Simulator) Last() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Stats returns the number of pulses answered and the number of spurious
// edges raised.
func (s *Simulator) Stats() (pulses, glitches int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses, s.glitches
}

// Sweeping reports whether the target oscillates.
func (s *Simulator) Sweeping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep
}

func (s *Simulator) targetLocked(at time.Time) float64 {
	if !s.sweep {
		return s.base
	}
	phase := at.Sub(s.epoch).Seconds() / config.DemoSweepPeriod.Seconds()
	mid := (config.DemoMinCm + config.DemoMaxCm) / 2
	amp := (config.DemoMaxCm - config.DemoMinCm) / 2
	return mid - amp*math.Cos(2*math.Pi*phase)
}

func clampCm(cm float64) float64 {
	switch {
	case math.IsNaN(cm) || cm < 0:
		return 0
	case cm > config.MaxDisplayCm:
		return config.MaxDisplayCm
	}
	return cm
}

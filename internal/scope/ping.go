package scope

import (
	"time"

	"sonar-prox.klederson.com/internal/config"
)

// Ping animates the trigger burst travelling down the beam.
type Ping struct {
	Front float64 // leading edge as a fraction of the beam, >1 once spent
	Fired time.Time
}

// NewPing creates a spent ping.
func NewPing() *Ping {
	return &Ping{Front: 2}
}

// Fire restarts the ping at the sensor.
func (p *Ping) Fire(at time.Time) {
	p.Fired = at
	p.Front = 0
}

// Update advances the front to time now.
func (p *Ping) Update(now time.Time) {
	if p.Fired.IsZero() {
		return
	}
	p.Front = float64(now.Sub(p.Fired)) / float64(config.PingTrail)
}

// Active reports whether any part of the ping is still on the beam.
func (p *Ping) Active() bool {
	return p.Front <= 1+pingTrailFrac
}

const pingTrailFrac = 0.25

// Intensity returns the glow [0, 1] at beam fraction frac. The ping leaves
// a trail behind its front.
func (p *Ping) Intensity(frac float64) float64 {
	diff := p.Front - frac
	if diff < 0 || diff > pingTrailFrac {
		return 0
	}
	// Linear falloff: 1.0 at the front, 0.0 at trail end
	return 1.0 - diff/pingTrailFrac
}

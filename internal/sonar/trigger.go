package sonar

import (
	"errors"
	"fmt"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
)

// ErrTriggerArmed is returned when the trigger generator is armed twice.
var ErrTriggerArmed = errors.New("sonar: trigger already armed")

// Trigger owns the timer that emits the sensor's trigger pulse train.
type Trigger struct {
	timer hw.PeriodicTimer
	armed bool
}

// NewTrigger creates a trigger generator on timer.
func NewTrigger(timer hw.PeriodicTimer) *Trigger {
	return &Trigger{timer: timer}
}

// Arm starts the 17 Hz, ~20 µs pulse train. The timer runs on its own
// afterwards and must not be reconfigured.
func (t *Trigger) Arm() error {
	if t.armed {
		return ErrTriggerArmed
	}
	if err := t.timer.ConfigurePeriodic(config.TriggerPeriodTicks, config.TriggerPulseTicks); err != nil {
		return fmt.Errorf("sonar: arm trigger: %w", err)
	}
	t.armed = true
	return nil
}

// Armed reports whether the pulse train is running.
func (t *Trigger) Armed() bool {
	return t.armed
}

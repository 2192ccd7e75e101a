package sonar

import (
	"math"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/hw"
)

// ToneFrequency maps a distance to the tone timer period, 0 meaning
// silence. The value rises as the target moves away and has no upper
// clamp near the cutoff.
// Formula: 1048576 / uint(5000 - 100*cm)
func ToneFrequency(cm float64) uint32 {
	if cm >= config.ToneCutoffCm || math.IsNaN(cm) {
		return 0
	}
	divisor := uint32(config.ToneDivisorBase - config.ToneDivisorSlope*cm)
	if divisor == 0 {
		// within 0.01 cm of the cutoff
		divisor = 1
	}
	return config.TimerClockHz / divisor
}

// ToneRegisters is what the tone timer was programmed with.
type ToneRegisters struct {
	Period  uint16
	Compare uint16
}

// Silent reports whether the registers stop the oscillation.
func (r ToneRegisters) Silent() bool {
	return r.Period == 0
}

// ToneFor returns the registers for a tone value: the period truncated to
// the 16-bit register and a 50% compare, or zeros for silence.
func ToneFor(freq uint32) ToneRegisters {
	if freq == 0 {
		return ToneRegisters{}
	}
	period := uint16(freq)
	return ToneRegisters{Period: period, Compare: period / 2}
}

// DriveTone programs the tone timer for freq and returns the registers
// written. Nothing is reported as written when the timer rejects them.
func DriveTone(t hw.PWMTimer, freq uint32) (ToneRegisters, error) {
	regs := ToneFor(freq)
	if err := t.ConfigurePWM(regs.Period, regs.Compare); err != nil {
		return ToneRegisters{}, err
	}
	return regs, nil
}

// PitchHz returns the audible frequency produced by a tone period.
func PitchHz(period uint16) float64 {
	if period == 0 {
		return 0
	}
	return float64(config.TimerClockHz) / float64(period)
}

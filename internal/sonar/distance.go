package sonar

import (
	"math"

	"sonar-prox.klederson.com/internal/config"
)

// ElapsedTicks returns the ticks between two captures of a counter that
// wraps at period. At most one wrap between the captures is assumed; equal
// timestamps read as one full period.
func ElapsedTicks(start, end, period uint16) uint16 {
	if end > start {
		return end - start
	}
	return period - (start - end)
}

// Distance converts an echo width in capture ticks to centimeters.
// Formula: cm = 100 * (340/2) * 0.012 s * ticks / 12582
func Distance(elapsed uint16) float64 {
	return config.CmPerMeter * config.HalfSpeedOfSound * config.CaptureWindowSec *
		float64(elapsed) / config.CapturePeriodTicks
}

// TicksForDistance is the inverse of Distance, rounded to the nearest tick
// and limited to what the capture counter can hold.
func TicksForDistance(cm float64) uint16 {
	if cm <= 0 || math.IsNaN(cm) {
		return 0
	}
	ticks := math.Round(cm * config.CapturePeriodTicks /
		(config.CmPerMeter * config.HalfSpeedOfSound * config.CaptureWindowSec))
	if ticks >= config.CapturePeriodTicks {
		return config.CapturePeriodTicks - 1
	}
	return uint16(ticks)
}

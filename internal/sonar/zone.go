package sonar

import "sonar-prox.klederson.com/internal/config"

// Zone is a proximity band.
type Zone int

const (
	ZoneFar Zone = iota
	ZoneMedium
	ZoneNear
	ZoneVeryNear
)

func (z Zone) String() string {
	switch z {
	case ZoneMedium:
		return "Medium"
	case ZoneNear:
		return "Near"
	case ZoneVeryNear:
		return "VeryNear"
	default:
		return "Far"
	}
}

// Indicators is the state of the two zone LEDs.
type Indicators struct {
	A bool
	B bool
}

// Classify maps a distance to its zone. Bounds are checked in order, so
// 50.0 and 30.0 are Medium and 10.0 is Near.
func Classify(cm float64) Zone {
	switch {
	case cm > config.FarAboveCm:
		return ZoneFar
	case cm >= config.MediumFromCm && cm <= config.FarAboveCm:
		return ZoneMedium
	case cm >= config.NearFromCm && cm < config.MediumFromCm:
		return ZoneNear
	case cm < config.NearFromCm:
		return ZoneVeryNear
	}
	// NaN
	return ZoneFar
}

// Indicators returns the LED pattern for the zone.
func (z Zone) Indicators() Indicators {
	switch z {
	case ZoneMedium:
		return Indicators{A: false, B: true}
	case ZoneNear:
		return Indicators{A: true, B: false}
	case ZoneVeryNear:
		return Indicators{A: true, B: true}
	default:
		return Indicators{}
	}
}

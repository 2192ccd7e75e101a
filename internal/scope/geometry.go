package scope

import (
	"math"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/sonar"
)

// ColumnCm returns the distance shown at column col of a beam that is
// width columns wide. Column 0 is the sensor face.
func ColumnCm(col, width int) float64 {
	if width <= 1 {
		return 0
	}
	return float64(col) * config.MaxDisplayCm / float64(width-1)
}

// CmToColumn maps a distance onto the beam, clamping to its ends.
func CmToColumn(cm float64, width int) int {
	if width < 1 || math.IsNaN(cm) || cm <= 0 {
		return 0
	}
	if cm >= config.MaxDisplayCm {
		return width - 1
	}
	return int(math.Round(cm / config.MaxDisplayCm * float64(width-1)))
}

// ColumnZone returns the proximity zone under column col.
func ColumnZone(col, width int) sonar.Zone {
	return sonar.Classify(ColumnCm(col, width))
}

// BoundaryColumns returns the columns where the zone changes, nearest first.
func BoundaryColumns(width int) []int {
	var cols []int
	for col := 1; col < width; col++ {
		if ColumnZone(col, width) != ColumnZone(col-1, width) {
			cols = append(cols, col)
		}
	}
	return cols
}

// Fraction returns how far along the beam column col lies, in [0, 1].
func Fraction(col, width int) float64 {
	if width <= 1 {
		return 0
	}
	return float64(col) / float64(width-1)
}

package app

import "math"

// History is a sliding window over the most recent distances. Gaps
// (NaN readings) are skipped so the sparkline keeps its scale.
type History struct {
	window []float64
	limit  int
	pushed int
}

// NewHistory keeps up to limit readings.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{window: make([]float64, 0, limit), limit: limit}
}

// Add appends a reading and drops the oldest once the window is full.
func (h *History) Add(cm float64) {
	if math.IsNaN(cm) {
		return
	}
	h.pushed++
	if len(h.window) == h.limit {
		copy(h.window, h.window[1:])
		h.window = h.window[:h.limit-1]
	}
	h.window = append(h.window, cm)
}

// Values returns a copy of the window, oldest first.
func (h *History) Values() []float64 {
	if len(h.window) == 0 {
		return nil
	}
	return append([]float64(nil), h.window...)
}

// Latest returns the newest reading and whether there is one.
func (h *History) Latest() (float64, bool) {
	if len(h.window) == 0 {
		return 0, false
	}
	return h.window[len(h.window)-1], true
}

// Len returns the number of readings in the window.
func (h *History) Len() int {
	return len(h.window)
}

// Total returns how many readings were ever added.
func (h *History) Total() int {
	return h.pushed
}

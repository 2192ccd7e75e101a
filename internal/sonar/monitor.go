package sonar

import (
	"sync"
	"time"

	"sonar-prox.klederson.com/internal/hw"
)

// Snapshot is a copy of the monitor state.
type Snapshot struct {
	Last      Reading
	HasLast   bool
	LastAt    time.Time
	State     CaptureState
	Cycles    int // completed cycles
	Unpaired  int // cycles closed without a rising edge
	Restarts  int // rising edges that overwrote a pending one
	Ignored   int // events with an unrecognized vector code
	LastEvent hw.Capture
}

// Monitor is a thread-safe record of what the controller saw. The
// controller writes it, observers read copies.
type Monitor struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewMonitor creates an empty Monitor.
func NewMonitor() *Monitor {
	return &Monitor{now: time.Now}
}

func (m *Monitor) observe(ev hw.Capture, prev, next CaptureState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.State = next
	m.snap.LastEvent = ev
	switch kindOf(ev.Source) {
	case edgeRising:
		if prev == StateTiming {
			m.snap.Restarts++
		}
	case edgeIgnored:
		m.snap.Ignored++
	}
}

func (m *Monitor) record(r Reading) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.Last = r
	m.snap.HasLast = true
	m.snap.LastAt = m.now()
	m.snap.Cycles++
	if r.Unpaired {
		m.snap.Unpaired++
	}
}

// Snapshot returns a copy of the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

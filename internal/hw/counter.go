package hw

import "time"

// counterAt returns the value of a free-running counter clocked at clockHz
// that wraps at period, d after it started. Whole seconds and the remainder
// are scaled apart so the product cannot overflow for any realistic uptime.
func counterAt(d time.Duration, clockHz int, period uint16) uint16 {
	if period == 0 || clockHz <= 0 || d <= 0 {
		return 0
	}
	hz := uint64(clockHz)
	ticks := uint64(d/time.Second)*hz + uint64(d%time.Second)*hz/uint64(time.Second)
	return uint16(ticks % uint64(period))
}

// read64 assembles a 64-bit counter exposed as two unlatched 32-bit
// halves. The high half is read on both sides of the low half and the read
// is retried when a carry landed in between.
func read64(hi, lo func() uint32) uint64 {
	for {
		h := hi()
		l := lo()
		if hi() == h {
			return uint64(h)<<32 | uint64(l)
		}
	}
}

//go:build tinygo || !cgo

package hw

// Speaker is unavailable without cgo.
type Speaker struct {
	PWMTimer
}

// NewSpeaker always fails on this build.
func NewSpeaker(inner PWMTimer, clockHz int) (*Speaker, error) {
	return nil, ErrNoAudio
}

func (s *Speaker) Close() error { return nil }

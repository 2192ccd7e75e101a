//go:build !tinygo && cgo

package hw

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	speakerSampleRate = 44100
	speakerAmplitude  = 6000
)

// Speaker wraps the tone timer and renders its square wave on the host
// sound card while passing every register write through.
type Speaker struct {
	inner   PWMTimer
	clockHz int

	mu     sync.Mutex
	period uint16
	duty   uint16
	phase  float64 // position inside the current period, in timer ticks

	player *audio.Player
}

// NewSpeaker starts host playback for a tone timer clocked at clockHz.
func NewSpeaker(inner PWMTimer, clockHz int) (*Speaker, error) {
	if clockHz <= 0 {
		return nil, fmt.Errorf("hw: speaker: invalid clock %d", clockHz)
	}
	s := &Speaker{inner: inner, clockHz: clockHz}

	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(speakerSampleRate)
	}
	p, err := ctx.NewPlayer(&speakerReader{s: s})
	if err != nil {
		return nil, fmt.Errorf("hw: speaker: %w", err)
	}
	p.SetBufferSize(50 * time.Millisecond)
	p.Play()
	s.player = p
	return s, nil
}

func (s *Speaker) ConfigurePWM(period, duty uint16) error {
	if err := s.inner.ConfigurePWM(period, duty); err != nil {
		return err
	}
	s.mu.Lock()
	s.period, s.duty = period, duty
	if s.period == 0 {
		s.phase = 0
	}
	s.mu.Unlock()
	return nil
}

// Close stops playback.
func (s *Speaker) Close() error {
	if s.player == nil {
		return nil
	}
	return s.player.Close()
}

// sample advances the wave by one output sample.
func (s *Speaker) sample() int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.period == 0 {
		return 0
	}
	s.phase += float64(s.clockHz) / speakerSampleRate
	for s.phase >= float64(s.period) {
		s.phase -= float64(s.period)
	}
	if s.phase < float64(s.duty) {
		return speakerAmplitude
	}
	return -speakerAmplitude
}

type speakerReader struct {
	s *Speaker
}

// Read fills p with 16-bit little-endian stereo frames.
func (r *speakerReader) Read(p []byte) (int, error) {
	if len(p) < 4 {
		return 0, io.ErrShortBuffer
	}
	n := len(p) / 4 * 4
	for i := 0; i < n; i += 4 {
		v := r.s.sample()
		lo, hi := byte(v), byte(uint16(v)>>8)
		p[i], p[i+1] = lo, hi
		p[i+2], p[i+3] = lo, hi
	}
	return n, nil
}

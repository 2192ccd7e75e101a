package app

import "time"

// TickMsg triggers a frame update for animation.
type TickMsg time.Time

// LoopErrMsg reports that the measurement loop stopped with an error.
type LoopErrMsg struct {
	Err error
}

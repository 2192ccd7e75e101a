package app

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/echo"
	"sonar-prox.klederson.com/internal/hw"
	"sonar-prox.klederson.com/internal/sonar"
)

// LoopOptions configures a simulated measurement loop.
type LoopOptions struct {
	Echo      echo.Options
	Sound     bool // play the tone timer on the host sound card
	Log       logrus.FieldLogger
	OnReading func(sonar.Reading)
}

// Loop is the closed measurement loop on a simulated board: the trigger
// timer, the echo simulator and the controller.
type Loop struct {
	Board   *hw.SimBoard
	Monitor *sonar.Monitor
	Sim     *echo.Simulator

	ctrl    *sonar.Controller
	speaker *hw.Speaker
	log     logrus.FieldLogger
}

// NewLoop wires a simulated board to a controller.
func NewLoop(opts LoopOptions) *Loop {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	sb := hw.NewSimBoard(config.TimerClockHz)
	board := sb.Board()
	loop := &Loop{
		Board:   sb,
		Monitor: sonar.NewMonitor(),
		Sim:     echo.NewSimulator(sb, opts.Echo),
		log:     log,
	}

	if opts.Sound {
		sp, err := hw.NewSpeaker(sb.Tone, config.TimerClockHz)
		if err != nil {
			log.WithError(err).Warn("sound disabled")
		} else {
			board.Tone = sp
			loop.speaker = sp
		}
	}

	loop.ctrl = sonar.NewController(board, sonar.Options{
		Log:       log,
		Monitor:   loop.Monitor,
		OnReading: opts.OnReading,
	})
	return loop
}

// Run configures the board and runs the loop until ctx is done. A
// cancelled context is a clean stop.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.ctrl.Start(); err != nil {
		return err
	}
	if l.speaker != nil {
		defer l.speaker.Close()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.Board.Trigger.Run(ctx) })
	g.Go(func() error { return l.Sim.Run(ctx) })
	g.Go(func() error { return l.ctrl.Run(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		l.log.Info("sonar stopped")
		return nil
	}
	return err
}

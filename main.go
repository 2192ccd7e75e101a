package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sonar-prox.klederson.com/internal/app"
	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/echo"
	"sonar-prox.klederson.com/internal/hw"
	"sonar-prox.klederson.com/internal/sonar"
)

var (
	flagDistance float64
	flagSweep    bool
	flagGlitch   float64
	flagSound    bool
	flagHeadless bool
	flagCycles   int
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sonar-prox",
		Short: "SONAR-PROX - ultrasonic proximity sensor controller on a simulated board",
		Long: `SONAR-PROX runs the ultrasonic proximity controller against a simulated
board: a trigger timer pings a moving target, a capture timer times the echo,
and the measured distance drives two indicator LEDs and a tone.

The terminal display shows the beam, the zone bands and the controller state.
Use --headless to log one line per reading instead.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().Float64Var(&flagDistance, "distance", 25.0, "Target distance in cm")
	rootCmd.Flags().BoolVar(&flagSweep, "sweep", false, "Move the target back and forth")
	rootCmd.Flags().Float64Var(&flagGlitch, "glitch", 0, "Probability of a spurious falling edge per ping")
	rootCmd.Flags().BoolVar(&flagSound, "sound", false, "Play the tone on the host sound card")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Log readings instead of showing the display")
	rootCmd.Flags().IntVar(&flagCycles, "cycles", 0, "Stop after this many readings in headless mode (0 runs forever)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "replay FILE",
		Short: "Feed a script of capture events to the controller",
		Long: `Replay reads one capture event per line and hands each to the controller
on a simulated board, logging every reading:

  rise COUNT        rising edge latched at COUNT
  fall COUNT        falling edge latched at COUNT
  raw CODE COUNT    event with an arbitrary vector code
  echo CM [START]   full pulse for a target at CM cm

Text after # is a comment.`,
		Args: cobra.ExactArgs(1),
		RunE: replay,
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	return log, nil
}

func echoOptions() echo.Options {
	return echo.Options{
		Distance: flagDistance,
		Sweep:    flagSweep,
		Glitch:   flagGlitch,
		Jitter:   config.DemoJitterCm,
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagGlitch < 0 || flagGlitch > 1 {
		return fmt.Errorf("--glitch must be between 0 and 1, got %v", flagGlitch)
	}
	if flagHeadless {
		return runHeadless(cmd.Context())
	}

	// The screen belongs to the display.
	log, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	loop := app.NewLoop(app.LoopOptions{Echo: echoOptions(), Sound: flagSound, Log: log})
	model := app.New(loop, "sim")

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFPS(config.TargetFPS),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := loop.Run(ctx); err != nil {
			p.Send(app.LoopErrMsg{Err: err})
		}
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(app.AppModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func runHeadless(parent context.Context) error {
	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readings := 0
	loop := app.NewLoop(app.LoopOptions{
		Echo:  echoOptions(),
		Sound: flagSound,
		Log:   log,
		OnReading: func(r sonar.Reading) {
			readings++
			if flagCycles > 0 && readings >= flagCycles {
				cancel()
			}
		},
	})
	if err := loop.Run(ctx); err != nil {
		return err
	}

	snap := loop.Monitor.Snapshot()
	log.WithFields(logrus.Fields{
		"cycles":   snap.Cycles,
		"unpaired": snap.Unpaired,
		"restarts": snap.Restarts,
		"ignored":  snap.Ignored,
		"dropped":  loop.Board.Echo.Overruns(),
	}).Info("summary")
	return nil
}

func replay(cmd *cobra.Command, args []string) error {
	log, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	steps, err := echo.ParseScript(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	board := hw.NewSimBoard(config.TimerClockHz)
	mon := sonar.NewMonitor()
	ctrl := sonar.NewController(board.Board(), sonar.Options{Log: log, Monitor: mon})
	if err := ctrl.Start(); err != nil {
		return err
	}

	for _, st := range steps {
		r, done := ctrl.Handle(st.Event)
		if !done {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "line %d: %d ticks  %.2f cm  %s  LED A=%t B=%t  tone %d (CCR0=%d CCR1=%d)%s\n",
			st.Line, r.Elapsed, r.Distance, r.Zone, r.Indicators.A, r.Indicators.B,
			r.Frequency, r.Tone.Period, r.Tone.Compare, unpairedNote(r))
	}

	snap := mon.Snapshot()
	log.WithFields(logrus.Fields{
		"steps":    len(steps),
		"cycles":   snap.Cycles,
		"unpaired": snap.Unpaired,
		"restarts": snap.Restarts,
		"ignored":  snap.Ignored,
		"state":    snap.State.String(),
	}).Info("replay done")
	return nil
}

func unpairedNote(r sonar.Reading) string {
	if r.Unpaired {
		return "  (no rising edge)"
	}
	return ""
}

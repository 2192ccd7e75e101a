package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sonar-prox.klederson.com/internal/config"
	"sonar-prox.klederson.com/internal/scope"
	"sonar-prox.klederson.com/internal/sonar"
	"sonar-prox.klederson.com/internal/ui"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	loop    *Loop
	ping    *scope.Ping
	history *History
	cycles  int
	err     error
}

// AppModel is the root Bubble Tea model for the sonar display.
type AppModel struct {
	width  int
	height int

	running bool
	board   string

	shared *shared

	// Cached snapshot
	snap   sonar.Snapshot
	target float64
	now    time.Time
}

// New creates a model showing loop.
func New(loop *Loop, board string) AppModel {
	return AppModel{
		running: true,
		board:   board,
		shared: &shared{
			loop:    loop,
			ping:    scope.NewPing(),
			history: NewHistory(config.HistoryLen),
		},
	}
}

// Err returns the error that stopped the loop, if any.
func (m AppModel) Err() error {
	return m.shared.err
}

func (m AppModel) Init() tea.Cmd {
	return tickCmd()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		now := time.Time(msg)
		m.shared.ping.Update(now)
		if m.running {
			m.refresh(now)
		}
		return m, tickCmd()

	case LoopErrMsg:
		m.shared.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// refresh copies the loop state into the model and records new readings.
func (m *AppModel) refresh(now time.Time) {
	snap := m.shared.loop.Monitor.Snapshot()
	if snap.Cycles != m.shared.cycles {
		m.shared.cycles = snap.Cycles
		m.shared.history.Add(snap.Last.Distance)
		m.shared.ping.Fire(now)
	}
	m.snap = snap
	m.target = m.shared.loop.Sim.Target(now)
	m.now = now
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sim := m.shared.loop.Sim
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "s", "S":
		m.running = true

	case "p", "P":
		m.running = false

	case "up", "k":
		sim.Nudge(config.DemoStepCm)

	case "down", "j":
		sim.Nudge(-config.DemoStepCm)

	case "g", "G":
		sim.InjectGlitch()

	case "r", "R":
		sim.InjectLoneRising()
	}

	return m, nil
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing sonar..."
	}

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < 5 {
		bodyH = 5
	}

	readoutW := 38
	scopeW := m.width - readoutW
	if scopeW < 30 {
		scopeW = 30
	}

	menuBar := ui.RenderMenuBar(m.width, m.board, m.running)

	innerW := scopeW - 4
	innerH := bodyH - 4
	if innerW < 10 {
		innerW = 10
	}
	if innerH < 3 {
		innerH = 3
	}
	frame := scope.Frame{
		Target:    m.snap.Last.Distance,
		HasTarget: m.snap.HasLast,
		Zone:      m.snap.Last.Zone,
		Ping:      m.shared.ping,
	}
	scopeContent := scope.Render(innerW, innerH, frame)
	legend := scope.RenderLegend(innerW)
	scopePanel := ui.RenderScopePanel(scopeW, bodyH, scopeContent, legend)

	readout := ui.RenderReadoutPanel(ui.Readout{
		Snapshot: m.snap,
		Target:   m.target,
		History:  m.shared.history.Values(),
		Now:      m.now,
	}, readoutW, bodyH)

	statusBar := ui.RenderStatusBar(m.width, m.running, m.snap, m.shared.loop.Board.Echo.Overruns())

	return ui.ComposeLayout(menuBar, scopePanel, readout, statusBar)
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.SnapshotPeriod, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

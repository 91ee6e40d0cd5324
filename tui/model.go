// Package tui is the interactive front end: a bubbletea program that ticks the
// library once per frame, like a game loop, and shows the program list, the
// selected program's queues and the console.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/a2y-d5l/launchpad/input"
	"github.com/a2y-d5l/launchpad/library"
)

// DefaultFrameInterval is the engine tick rate (about 60 Hz).
const DefaultFrameInterval = 16 * time.Millisecond

// frameMsg drives one controller step.
type frameMsg time.Time

// Model is the bubbletea model for the launcher.
type Model struct {
	lib   *library.Manager
	input *input.Manager
	frame time.Duration

	// Dimensions
	width  int
	height int

	console viewport.Model
	follow  bool

	keys     KeyMap
	help     help.Model
	showHelp bool

	// notice is the last launch error, shown until the next launch.
	notice string
}

// New creates a model over an open library. frame <= 0 uses DefaultFrameInterval.
func New(lib *library.Manager, frame time.Duration) *Model {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	h := help.New()
	h.ShowAll = false

	m := &Model{
		lib:     lib,
		input:   input.NewManager(),
		frame:   frame,
		console: viewport.New(0, 0),
		follow:  true,
		keys:    DefaultKeyMap(),
		help:    h,
	}
	m.input.SetCount(len(lib.Programs()))
	m.refreshConsole()
	return m
}

// Init starts the frame loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		return m, nil

	case frameMsg:
		m.step()
		if m.input.Quit() {
			return m, tea.Quit
		}
		return m, m.tick()
	}

	var cmd tea.Cmd
	m.console, cmd = m.console.Update(msg)
	return m, cmd
}

// step is one frame: apply pending input, advance the library, refresh the
// console if anything changed.
func (m *Model) step() {
	attempted, err := m.lib.HandleInput(m.input)
	if attempted {
		m.notice = ""
		if err != nil {
			m.notice = err.Error()
		}
	}
	if m.lib.Update() {
		m.refreshConsole()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.input.SetQuit(true)
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keys.Up):
		m.input.MoveSelection(-1)

	case key.Matches(msg, m.keys.Down):
		m.input.MoveSelection(1)

	case key.Matches(msg, m.keys.Launch):
		m.requestLaunch(int(msg.String()[0] - '1'))

	case key.Matches(msg, m.keys.Follow):
		m.follow = true
		m.console.GotoBottom()

	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.console.ScrollUp(max(m.console.Height/2, 1))

	case key.Matches(msg, m.keys.PageDown):
		m.console.ScrollDown(max(m.console.Height/2, 1))
		m.follow = m.console.AtBottom()
	}
	return m, nil
}

// requestLaunch records a launch of the selected program's n-th queue. The
// request is consumed on the next frame.
func (m *Model) requestLaunch(n int) {
	programs := m.lib.Programs()
	sel := m.input.Selection()
	if sel >= len(programs) {
		return
	}
	queues := programs[sel].CommandQueues
	if n < 0 || n >= len(queues) {
		return
	}
	m.input.RequestLaunch(queues[n].Name)
}

func (m *Model) refreshConsole() {
	m.console.SetContent(strings.Join(m.lib.TaskManager().Lines(), "\n"))
	if m.follow {
		m.console.GotoBottom()
	}
}

func (m *Model) updateViewportSize() {
	// Top panes plus help take roughly a third of the screen.
	m.console.Width = max(m.width-4, 0)
	m.console.Height = max(m.height-m.height/3-5, 3)
	m.refreshConsole()
}

package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2y-d5l/launchpad/catalog"
	"github.com/a2y-d5l/launchpad/library"
)

const testLibrary = `
[settings]
report_exit_status = true

[[programs]]
name = "First"
directory_name = "first"
  [[programs.queues]]
  name = "greet"
    [[programs.queues.commands]]
    executable = "echo"
    arguments = ["hello from first"]

[[programs]]
name = "Second"
directory_name = "second"
  [[programs.queues]]
  name = "greet"
    [[programs.queues.commands]]
    executable = "echo"
    arguments = ["hello from second"]
  [[programs.queues]]
  name = "fail"
    [[programs.queues.commands]]
    executable = "sh"
    arguments = ["-c", "exit 2"]
`

func newTestModel(t *testing.T) *Model {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, catalog.FileName), []byte(testLibrary), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "first"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "second"), 0o755))

	cfg := library.DefaultConfig()
	cfg.Root = root
	cfg.Watch = false
	lib, err := library.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	m := New(lib, time.Millisecond)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// frames steps the model until the engine is idle.
func frames(t *testing.T, m *Model) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	m.Update(frameMsg(time.Now()))
	for !m.lib.TaskManager().Idle() {
		require.True(t, time.Now().Before(deadline), "engine did not go idle")
		m.Update(frameMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
}

func TestModelLaunchSelectedQueue(t *testing.T) {
	m := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.input.Selection())

	m.Update(runes("1"))
	frames(t, m)

	lines := m.lib.TaskManager().Lines()
	assert.Contains(t, lines, "hello from second")
	assert.NotContains(t, lines, "hello from first")
	assert.Contains(t, m.View(), "hello from second")
}

func TestModelSelectionClamped(t *testing.T) {
	m := newTestModel(t)
	for range 5 {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 1, m.input.Selection())
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.input.Selection())
}

func TestModelIgnoresMissingQueueNumber(t *testing.T) {
	m := newTestModel(t)
	m.Update(runes("5"))
	_, pending := m.input.PendingLaunch()
	assert.False(t, pending)
}

func TestModelShowsFailureStatus(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(runes("2"))
	frames(t, m)

	assert.Contains(t, m.lib.TaskManager().Lines(), "[sh -c exit 2: exit code 2]")
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.input.Quit())
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	assert.Contains(t, view, "Programs")
	assert.Contains(t, view, "First")
	assert.Contains(t, view, "Second")
	assert.Contains(t, view, "greet")
	assert.Contains(t, view, "idle")
	assert.True(t, strings.Contains(view, "quit"), "help is rendered")
}

func TestModelFrameSchedulesNextFrame(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(frameMsg(time.Now()))
	require.NotNil(t, cmd)
	_, ok := cmd().(frameMsg)
	assert.True(t, ok)
}

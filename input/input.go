// Package input separates what the user asked for from where the request came
// from. Key handlers write through Updater; the library manager reads through
// State. Tests drive the manager with a Manager and no terminal at all.
package input

// Updater mutates input state.
type Updater interface {
	SetQuit(quit bool)
	// SetCount sets the number of selectable programs and clamps the selection.
	SetCount(n int)
	// MoveSelection moves the selection by delta, clamped to the program list.
	MoveSelection(delta int)
	// RequestLaunch asks for the named queue of the selected program to run.
	RequestLaunch(queue string)
	ClearLaunch()
}

// State reads input state.
type State interface {
	Quit() bool
	Selection() int
	PendingLaunch() (queue string, ok bool)
}

// Manager implements both Updater and State. It is not safe for concurrent
// use; it lives on the driving loop's goroutine.
type Manager struct {
	quit      bool
	count     int
	selection int
	launch    string
	pending   bool
}

var (
	_ Updater = (*Manager)(nil)
	_ State   = (*Manager)(nil)
)

// NewManager returns a Manager with nothing selected and nothing pending.
func NewManager() *Manager {
	return &Manager{}
}

// SetQuit records whether the user asked to exit.
func (m *Manager) SetQuit(quit bool) { m.quit = quit }

// SetCount sets the number of selectable programs and clamps the selection
// into the new range.
func (m *Manager) SetCount(n int) {
	m.count = max(n, 0)
	m.selection = m.clamp(m.selection)
}

// MoveSelection moves the selection by delta, stopping at either end.
func (m *Manager) MoveSelection(delta int) {
	m.selection = m.clamp(m.selection + delta)
}

// RequestLaunch marks queue as pending for the selected program, replacing
// any earlier request.
func (m *Manager) RequestLaunch(queue string) {
	m.launch = queue
	m.pending = true
}

// ClearLaunch drops the pending launch request.
func (m *Manager) ClearLaunch() {
	m.launch = ""
	m.pending = false
}

// Quit reports whether the user asked to exit.
func (m *Manager) Quit() bool { return m.quit }

// Selection returns the index of the selected program.
func (m *Manager) Selection() int { return m.selection }

// PendingLaunch returns the requested queue name and whether a request is pending.
func (m *Manager) PendingLaunch() (string, bool) { return m.launch, m.pending }

func (m *Manager) clamp(i int) int {
	if m.count == 0 || i < 0 {
		return 0
	}
	if i >= m.count {
		return m.count - 1
	}
	return i
}

// ReadWriter is what a consumer needs to both read a request and acknowledge it.
type ReadWriter interface {
	Updater
	State
}

var _ ReadWriter = (*Manager)(nil)

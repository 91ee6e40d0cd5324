// Package engine provides the task execution and output-streaming core of the
// launcher. It is completely decoupled from any UI/rendering logic: a driving
// loop (a TUI frame tick, a headless ticker, a test) calls TaskManager.Update
// once per iteration and reads the bounded console history back.
//
// The engine handles:
//   - A replaceable queue of commands, executed strictly one at a time
//   - Process creation with stdout/stderr captured on pipes
//   - Background readers moving bytes off the pipes into channels
//   - Non-blocking exit polling and channel draining
//   - Lossy text decoding and a bounded line history
//
// Basic usage:
//
//	tm := engine.New(engine.DefaultConfig())
//	tm.ReplaceQueue([]engine.CommandSpec{
//	    {Executable: "cargo", Arguments: []string{"build", "--release"}},
//	    {Executable: "cargo", Arguments: []string{"run", "--release"}},
//	}, "/home/me/library/game", nil)
//
//	for {
//	    if tm.Update() {
//	        redraw(tm.Lines())
//	    }
//	    // ... rest of the frame ...
//	}
package engine

import (
	"io"
	"slices"
	"strings"
	"syscall"
)

// CommandSpec describes an executable and its arguments. It is an inert value
// produced by the catalog; it carries no working directory until queued.
//
// Example:
//
//	spec := CommandSpec{
//	    Executable: "git",
//	    Arguments:  []string{"clone", "https://example.com/repo.git", "repo"},
//	}
type CommandSpec struct {
	// Executable is the program to run (e.g., "git", "cargo", "./run.sh").
	// This should be either an absolute path or a name that exists in PATH.
	Executable string `toml:"executable"`

	// Arguments are passed to the executable as-is, without shell expansion.
	// Do not include the executable itself.
	Arguments []string `toml:"arguments"`
}

// String renders the command for diagnostics and log lines.
func (c CommandSpec) String() string {
	if len(c.Arguments) == 0 {
		return c.Executable
	}
	return c.Executable + " " + strings.Join(c.Arguments, " ")
}

func (c CommandSpec) clone() CommandSpec {
	return CommandSpec{Executable: c.Executable, Arguments: slices.Clone(c.Arguments)}
}

// QueueEntry is a CommandSpec bound to the working directory it was queued with.
type QueueEntry struct {
	Command CommandSpec
	Dir     string
}

// String renders the entry's command.
func (q QueueEntry) String() string {
	return q.Command.String()
}

// Command is an abstraction over os/exec.Cmd to enable testing and alternative
// implementations. This interface represents a runnable command with capturable
// output streams.
//
// The standard implementation wraps os/exec.Cmd, but custom implementations
// can provide:
//   - Mock commands for testing
//   - Sandboxed or containerized execution
//   - Custom logging and instrumentation
type Command interface {
	// StdoutPipe returns a reader for the command's standard output.
	// This must be called before Start().
	//
	// The returned reader is owned by the caller and must be closed by it.
	// It is NOT closed by Wait, so output still buffered in the pipe after the
	// process exits can be read to EOF.
	StdoutPipe() (io.ReadCloser, error)

	// StderrPipe returns a reader for the command's standard error.
	// Same ownership rules as StdoutPipe.
	StderrPipe() (io.ReadCloser, error)

	// Start begins execution of the command without waiting for it to complete.
	// The caller must call Wait() to collect the exit status and release resources.
	//
	// Start will return an error if the command cannot be started (e.g., if the
	// executable is not found or the working directory does not exist).
	Start() error

	// Wait waits for the command to exit and returns any error.
	// Wait will return:
	//   - nil if the command exits with status 0
	//   - *exec.ExitError if the command exits with non-zero status
	//   - other errors for unexpected failures
	//
	// Wait blocks; the TaskManager only ever calls it from a background goroutine.
	Wait() error

	// Process returns the underlying process handle, if available.
	// This is used for signal handling during Shutdown.
	// May return nil if the process has not been started.
	Process() ProcessHandle
}

// ProcessHandle is an abstraction over os.Process for signal handling.
type ProcessHandle interface {
	// Signal sends the specified signal to the process.
	// Returns an error if the signal cannot be sent (e.g., process already exited).
	Signal(sig syscall.Signal) error

	// Kill forcefully terminates the process (equivalent to SIGKILL on Unix).
	Kill() error
}

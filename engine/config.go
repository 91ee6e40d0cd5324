package engine

import (
	"context"
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultMaxLines is the default capacity of the console history.
	DefaultMaxLines = 100

	// defaultReadChunkSize is the size of a single read from a child pipe.
	defaultReadChunkSize = 4 * 1024 // 4KB

	// defaultStreamBuffer is the number of chunks a stream channel can hold
	// before its reader waits for the controller to drain it.
	defaultStreamBuffer = 256

	// defaultMaxLineBytes caps a single unterminated line; longer runs are
	// split so a child that never prints a newline cannot grow memory unbounded.
	defaultMaxLineBytes = 1024 * 1024 // 1MB

	// defaultShutdownTimeout is the default time to wait for graceful process termination.
	defaultShutdownTimeout = 5 * time.Second
)

// CommandFactory creates Command instances from queue entries.
// This abstraction enables dependency injection for testing and alternative
// command implementations.
//
// The factory receives:
//   - ctx: Context owned by the TaskManager, cancelled by Shutdown
//   - entry: the command and the working directory it was queued with
//
// Testing with mocks:
//
//	factory := func(ctx context.Context, entry QueueEntry) (Command, error) {
//	    return &MockCommand{
//	        stdout: []string{"line1", "line2"},
//	    }, nil
//	}
type CommandFactory func(ctx context.Context, entry QueueEntry) (Command, error)

// ExitFunc is called once per started process, after its output has been
// fully drained into the history. err is the value returned by Wait.
type ExitFunc func(entry QueueEntry, err error)

// Config holds TaskManager configuration.
// Use DefaultConfig as a starting point; zero values fall back to defaults.
type Config struct {
	// LibraryRoot is the working directory for fetch commands. Fetching
	// creates a program's working directory, so it cannot run inside it.
	LibraryRoot string

	// MaxLines is the capacity of the console history.
	// If 0, DefaultMaxLines is used.
	MaxLines int

	// MaxBytes additionally caps the bytes held by the history.
	// If 0, no byte limit is enforced (only the line limit applies).
	MaxBytes int

	// ReadChunkSize is the maximum number of bytes an output reader forwards
	// per channel send. If 0, 4KB is used.
	ReadChunkSize int

	// StreamBuffer is the capacity, in chunks, of each stream channel.
	// If 0, 256 is used.
	StreamBuffer int

	// MaxLineBytes splits unterminated lines longer than this.
	// If 0, 1MB is used.
	MaxLineBytes int

	// ClearQueueOnSpawnFailure drops the rest of the queue when a command
	// cannot be started. When false, the failed entry is consumed and the
	// next entry starts on the following Update.
	ClearQueueOnSpawnFailure bool

	// ClearQueueOnFailure drops the rest of the queue when a command exits
	// with a non-zero status (e.g., a build fails before "run").
	ClearQueueOnFailure bool

	// ReportExitStatus appends a status line such as "[cargo build: exit code 101]"
	// to the history after each process's output.
	ReportExitStatus bool

	// Transcript, if set, receives a copy of every raw byte drained from the
	// child processes, in drain order. Written from the Update caller only.
	Transcript io.Writer

	// OnExit, if set, is invoked after each process's output is fully drained.
	OnExit ExitFunc

	// OnSpawnFailure, if set, is invoked when a popped entry cannot be
	// started. Such entries never reach OnExit.
	OnSpawnFailure ExitFunc

	// Logger receives structured engine logs. If nil, logs are discarded.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for Config.
//
// Defaults:
//   - MaxLines: 100
//   - ReadChunkSize: 4KB
//   - StreamBuffer: 256 chunks
//   - MaxLineBytes: 1MB
//   - ClearQueueOnSpawnFailure: false
//   - ClearQueueOnFailure: false
//   - ReportExitStatus: false
func DefaultConfig() Config {
	return Config{
		MaxLines:      DefaultMaxLines,
		ReadChunkSize: defaultReadChunkSize,
		StreamBuffer:  defaultStreamBuffer,
		MaxLineBytes:  defaultMaxLineBytes,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	base := DefaultConfig()
	if c.MaxLines <= 0 {
		c.MaxLines = base.MaxLines
	}
	if c.ReadChunkSize <= 0 {
		c.ReadChunkSize = base.ReadChunkSize
	}
	if c.StreamBuffer <= 0 {
		c.StreamBuffer = base.StreamBuffer
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = base.MaxLineBytes
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// TaskManager is the core execution engine. It owns the pending queue, the
// at-most-one running process, the controller halves of the output streams,
// and the bounded console history.
//
// The TaskManager coordinates three activities without ever blocking the
// caller:
//   - The driving loop, which calls Update once per iteration
//   - The child process, whose exit is delivered on a 1-buffered channel
//   - Two background readers per process, moving pipe bytes into channels
//
// All methods must be called from the driving loop's goroutine. The only
// state shared with other goroutines is the channels, and the TaskManager
// only ever receives from them without blocking.
//
// Basic usage:
//
//	tm := engine.New(cfg)
//	tm.ReplaceQueue(commands, workingDir, fetch)
//	for !quit {
//	    if tm.Update() {
//	        redraw(tm.Lines())
//	    }
//	}
//
// With a custom command factory (for testing):
//
//	tm := engine.New(cfg).WithCommandFactory(mockFactory)
type TaskManager struct {
	cfg     Config
	factory CommandFactory
	history *History
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// queue holds pending work; the next entry to run is at the tail.
	queue []QueueEntry

	// running is the live process, if any.
	running *run

	// runs are started processes whose output is not fully drained yet,
	// oldest first. The running process, when present, is the last one.
	runs []*run

	closed bool
}

// run is one started process together with the controller ends of its streams.
type run struct {
	id      string
	entry   QueueEntry
	cmd     Command
	started time.Time

	// done receives the result of Wait exactly once.
	done chan error

	exited  bool
	err     error
	streams []*stream

	// notes are appended to the history after this run's output.
	notes []string
}

func (r *run) drained() bool {
	for _, s := range r.streams {
		if !s.closed {
			return false
		}
	}
	return true
}

// New creates a TaskManager with the given configuration. Zero-valued fields
// fall back to DefaultConfig. The returned manager uses DefaultCommandFactory
// unless overridden with WithCommandFactory.
func New(cfg Config) *TaskManager {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskManager{
		cfg:     cfg,
		factory: DefaultCommandFactory,
		history: NewHistory(cfg.MaxLines, cfg.MaxBytes),
		logger:  cfg.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// WithCommandFactory replaces the factory used to create commands and returns
// the receiver. Call it before the first Update.
func (tm *TaskManager) WithCommandFactory(factory CommandFactory) *TaskManager {
	if factory == nil {
		factory = DefaultCommandFactory
	}
	tm.factory = factory
	return tm
}

// ReplaceQueue discards any pending work and queues commands to run in
// workingDir, in the order given.
//
// If workingDir is not an existing directory and fetch is non-nil, fetch runs
// first, in the library root, so it can create workingDir. If workingDir
// exists, fetch is ignored. An empty workingDir runs commands in the process
// working directory and never triggers fetch.
//
// While a process is running the call is a no-op: the queue and the running
// process are left untouched and ReplaceQueue returns false.
func (tm *TaskManager) ReplaceQueue(commands []CommandSpec, workingDir string, fetch *CommandSpec) bool {
	if tm.running != nil {
		tm.logger.Debug("queue replace ignored while a process is running",
			"run_id", tm.running.id, "command", tm.running.entry.String())
		return false
	}
	if tm.closed {
		return false
	}

	entries := make([]QueueEntry, 0, len(commands)+1)
	if fetch != nil && needsFetch(workingDir) {
		entries = append(entries, QueueEntry{Command: fetch.clone(), Dir: tm.cfg.LibraryRoot})
	}
	for _, c := range commands {
		entries = append(entries, QueueEntry{Command: c.clone(), Dir: workingDir})
	}
	// Execution pops from the tail.
	slices.Reverse(entries)
	tm.queue = entries

	tm.logger.Info("queue replaced", "dir", workingDir, "commands", len(entries))
	return true
}

// Update advances the engine by one step and reports whether the caller
// should refresh its view of the history. It never blocks.
//
// Steps:
//  1. Poll the running process for exit
//  2. Drain every open stream, appending complete lines to the history
//  3. Retire finished processes whose streams have both closed
//  4. If nothing is running, start the next queued command
//
// Update returns true if any output was drained, any line (including
// diagnostics) was added, or a process was started.
func (tm *TaskManager) Update() bool {
	before := tm.history.Total()

	if r := tm.running; r != nil {
		select {
		case err := <-r.done:
			tm.markExited(r, err)
		default:
		}
	}

	drained := tm.drain()
	started := tm.popAndExecute()

	return drained || started || tm.history.Total() != before
}

// markExited records the exit of the running process and applies the failure
// policy. The run stays in tm.runs until its streams are drained.
func (tm *TaskManager) markExited(r *run, err error) {
	r.exited = true
	r.err = err
	tm.running = nil

	tm.logger.Info("process exited",
		"run_id", r.id,
		"command", r.entry.String(),
		"status", FormatExitError(err),
		"duration", time.Since(r.started))

	if err != nil && tm.cfg.ClearQueueOnFailure && len(tm.queue) > 0 {
		r.notes = append(r.notes, fmt.Sprintf("queue cleared: %d command(s) skipped after failure", len(tm.queue)))
		tm.queue = nil
	}
}

// drain empties every open stream without blocking and retires runs that
// have exited and reached end of stream on both pipes.
func (tm *TaskManager) drain() bool {
	got := false
	kept := tm.runs[:0]
	for _, r := range tm.runs {
		for _, s := range r.streams {
			if s.drain(tm.writeTranscript, tm.appendLine) {
				got = true
			}
		}
		if r.exited && r.drained() {
			tm.retire(r)
			continue
		}
		kept = append(kept, r)
	}
	clear(tm.runs[len(kept):])
	tm.runs = kept
	return got
}

func (tm *TaskManager) retire(r *run) {
	if tm.cfg.ReportExitStatus {
		tm.history.Append(fmt.Sprintf("[%s: %s]", r.entry, FormatExitError(r.err)))
	}
	tm.history.Append(r.notes...)
	if tm.cfg.OnExit != nil {
		tm.cfg.OnExit(r.entry, r.err)
	}
}

func (tm *TaskManager) appendLine(line string) {
	tm.history.Append(line)
}

func (tm *TaskManager) writeTranscript(chunk []byte) {
	if tm.cfg.Transcript == nil {
		return
	}
	if _, err := tm.cfg.Transcript.Write(chunk); err != nil {
		tm.logger.Warn("transcript write failed, disabling transcript", "error", err)
		tm.cfg.Transcript = nil
	}
}

// popAndExecute starts the next queued command if nothing is running.
// A command that fails to start is consumed: it is reported in the history
// and, unless ClearQueueOnSpawnFailure is set, the next Update moves on to the
// following entry.
func (tm *TaskManager) popAndExecute() bool {
	if tm.running != nil || tm.closed || len(tm.queue) == 0 {
		return false
	}

	entry := tm.queue[len(tm.queue)-1]
	tm.queue = tm.queue[:len(tm.queue)-1]

	r, err := tm.spawn(entry)
	if err != nil {
		tm.logger.Error("process failed to start", "command", entry.String(), "dir", entry.Dir, "error", err)
		tm.history.Append("error: " + err.Error())
		if tm.cfg.OnSpawnFailure != nil {
			tm.cfg.OnSpawnFailure(entry, err)
		}
		if tm.cfg.ClearQueueOnSpawnFailure && len(tm.queue) > 0 {
			tm.history.Append(fmt.Sprintf("queue cleared: %d command(s) skipped", len(tm.queue)))
			tm.queue = nil
		}
		return true
	}

	tm.running = r
	tm.runs = append(tm.runs, r)
	return true
}

// spawn creates, wires and starts one command.
//
// Lifecycle:
//  1. Create command using the CommandFactory
//  2. Set up stdout and stderr pipes
//  3. Start the process
//  4. Detach one reader goroutine per pipe, each with its own channel
//  5. Detach a goroutine that delivers Wait's result
func (tm *TaskManager) spawn(entry QueueEntry) (*run, error) {
	cmd, err := tm.factory(tm.ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", entry, err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe for %s: %w", entry, err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdout.Close()
		return nil, fmt.Errorf("stderr pipe for %s: %w", entry, err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = stderr.Close()
		return nil, fmt.Errorf("start %s: %w", entry, err)
	}

	r := &run{
		id:      uuid.NewString(),
		entry:   entry,
		cmd:     cmd,
		started: time.Now(),
		done:    make(chan error, 1),
	}

	for _, p := range []struct {
		kind StreamKind
		pipe io.ReadCloser
	}{{Stdout, stdout}, {Stderr, stderr}} {
		ch := make(chan []byte, tm.cfg.StreamBuffer)
		logger := tm.logger.With("run_id", r.id, "stream", p.kind.String())
		go readOutput(p.pipe, ch, tm.cfg.ReadChunkSize, logger)
		r.streams = append(r.streams, newStream(p.kind, ch, tm.cfg.MaxLineBytes))
	}

	go func() {
		r.done <- cmd.Wait()
	}()

	tm.logger.Info("process started", "run_id", r.id, "command", entry.String(), "dir", entry.Dir)
	return r, nil
}

// Shutdown stops the engine for application teardown. Pending entries are
// dropped, and a running process gets SIGTERM, then Kill if it has not exited
// within timeout. Shutdown blocks until the process has exited; keep calling
// Update afterwards to drain its remaining output.
//
// This is not a per-command cancel: once shut down, the TaskManager accepts
// no new work.
func (tm *TaskManager) Shutdown(timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	tm.closed = true
	tm.queue = nil
	defer tm.cancel()

	r := tm.running
	if r == nil {
		return
	}

	proc := r.cmd.Process()
	if proc == nil {
		tm.markExited(r, <-r.done)
		return
	}

	tm.Annotate("[sending SIGTERM for graceful shutdown...]")
	_ = proc.Signal(syscall.SIGTERM)

	select {
	case err := <-r.done:
		tm.Annotate("[gracefully terminated]")
		tm.markExited(r, err)
	case <-time.After(timeout):
		tm.Annotate(fmt.Sprintf("[graceful shutdown timeout (%v), force killing...]", timeout))
		_ = proc.Kill()
		err := <-r.done
		tm.Annotate("[force killed]")
		tm.markExited(r, err)
	}
}

// Annotate appends a synthetic line to the history, e.g. a message from the
// surrounding application that should appear in the console.
func (tm *TaskManager) Annotate(line string) {
	tm.history.Append(line)
}

// History returns the bounded console history.
func (tm *TaskManager) History() *History { return tm.history }

// Lines returns a copy of the current history lines, oldest first.
func (tm *TaskManager) Lines() []string { return tm.history.Lines() }

// Running reports whether a process is currently running.
func (tm *TaskManager) Running() bool { return tm.running != nil }

// Current returns the entry of the running process.
func (tm *TaskManager) Current() (QueueEntry, bool) {
	if tm.running == nil {
		return QueueEntry{}, false
	}
	return tm.running.entry, true
}

// QueueLen returns the number of entries waiting to run.
func (tm *TaskManager) QueueLen() int { return len(tm.queue) }

// Queue returns the pending entries in execution order.
func (tm *TaskManager) Queue() []QueueEntry {
	out := slices.Clone(tm.queue)
	slices.Reverse(out)
	return out
}

// Idle reports whether there is nothing left to do: no running process, no
// queued entries and no output still to drain.
func (tm *TaskManager) Idle() bool {
	return tm.running == nil && len(tm.queue) == 0 && len(tm.runs) == 0
}

// needsFetch reports whether workingDir has yet to be created. An empty
// workingDir means the process working directory, which always exists.
func needsFetch(workingDir string) bool {
	if workingDir == "" {
		return false
	}
	info, err := os.Stat(workingDir)
	return err != nil || !info.IsDir()
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// DefaultCommandFactory creates real os/exec commands for process execution.
// This is the production implementation of CommandFactory that actually spawns
// system processes.
//
// The factory:
//   - Creates an exec.Cmd from the entry's CommandSpec
//   - Runs it in the entry's working directory
//   - Wires stdout and stderr to dedicated os.Pipe pairs (never the parent's console)
//   - Leaves stdin unset, which connects it to the null device
//
// The pipes are created with os.Pipe rather than exec.Cmd.StdoutPipe because
// Cmd.Wait closes the read side of StdoutPipe as soon as the process exits.
// With our own pipe pair the exit watcher and the readers are independent, and
// every byte the child wrote is still readable after Wait returns.
//
// This factory is used automatically when no factory is configured.
func DefaultCommandFactory(ctx context.Context, entry QueueEntry) (Command, error) {
	if entry.Command.Executable == "" {
		return nil, errors.New("empty executable")
	}
	cmd := exec.CommandContext(ctx, entry.Command.Executable, entry.Command.Arguments...)
	cmd.Dir = entry.Dir
	return &execCommand{cmd: cmd}, nil
}

// execCommand wraps exec.Cmd to implement the Command interface.
type execCommand struct {
	cmd *exec.Cmd

	// writers are the child's ends of the pipes, closed in the parent after Start.
	writers []*os.File
}

func (e *execCommand) StdoutPipe() (io.ReadCloser, error) {
	if e.cmd.Stdout != nil {
		return nil, errors.New("stdout already set")
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	e.cmd.Stdout = w
	e.writers = append(e.writers, w)
	return r, nil
}

func (e *execCommand) StderrPipe() (io.ReadCloser, error) {
	if e.cmd.Stderr != nil {
		return nil, errors.New("stderr already set")
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	e.cmd.Stderr = w
	e.writers = append(e.writers, w)
	return r, nil
}

func (e *execCommand) Start() error {
	err := e.cmd.Start()
	// The child holds its own copies now. Keeping ours open would stop the
	// readers from ever seeing EOF.
	for _, w := range e.writers {
		_ = w.Close()
	}
	e.writers = nil
	return err
}

func (e *execCommand) Wait() error {
	if e.cmd.Process == nil {
		return errors.New("command not started")
	}
	return e.cmd.Wait()
}

func (e *execCommand) Process() ProcessHandle {
	if e.cmd.Process == nil {
		return nil
	}
	return &processWrapper{Process: e.cmd.Process}
}

// processWrapper wraps os.Process to implement ProcessHandle.
type processWrapper struct {
	*os.Process
}

// Signal sends a signal to the process.
func (p *processWrapper) Signal(sig syscall.Signal) error {
	return p.Process.Signal(sig)
}

// Kill terminates the process.
func (p *processWrapper) Kill() error {
	return p.Process.Kill()
}

// Package runner drives a library headlessly: it launches one queue of one
// program, ticks the engine at a fixed frame interval, prints console output
// as it arrives, and returns an exit code when the queue is done.
//
// This package ties together the library (catalog + engine) and renderer
// (output formatting) layers, in the same frame-tick style as the TUI but
// without any input handling.
//
// Quick start:
//
//	cfg := runner.DefaultConfig()
//	cfg.Library.Root = "program_launcher_library"
//	cfg.Program = "Space Boss Battles"
//	cfg.Queue = catalog.QueueUpdateAndBuild
//	os.Exit(runner.Run(ctx, cfg))
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/a2y-d5l/launchpad/catalog"
	"github.com/a2y-d5l/launchpad/engine"
	"github.com/a2y-d5l/launchpad/library"
	"github.com/a2y-d5l/launchpad/renderer"
)

const (
	// defaultFrameInterval matches a 60 Hz render loop.
	defaultFrameInterval = 16 * time.Millisecond

	// defaultShutdownTimeout is the default time to wait for graceful shutdown.
	defaultShutdownTimeout = 5 * time.Second
)

// Config holds configuration for a headless launch.
//
// All fields except Program are optional and will be populated with sensible
// defaults from DefaultConfig() if not specified.
type Config struct {
	// Library configures the library folder. Watch is forced off: a headless
	// run launches once and never needs a reloaded catalog.
	Library library.Config

	// Program is the name of the program to launch (case-insensitive).
	Program string

	// Queue is the command queue to run. Defaults to "launch".
	Queue string

	// IsTTY indicates whether stdout is attached to a TTY (interactive terminal).
	// When nil, the value is auto-detected using renderer.IsTTY().
	//
	// Example (force non-TTY mode):
	//   val := false
	//   cfg.IsTTY = &val
	IsTTY *bool

	// LogPrefix defines the format for prefixing the program name in non-TTY
	// mode. Must contain exactly one "%s". If empty, defaults to "[%s]".
	LogPrefix string

	// FrameInterval is how often the engine is ticked.
	// If zero or negative, 16ms is used.
	FrameInterval time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	// before force-killing the running process.
	//
	// When the context is cancelled (Ctrl+C, SIGTERM, etc.):
	//  1. Drop the rest of the queue
	//  2. Send SIGTERM to the running process
	//  3. Wait up to ShutdownTimeout for graceful exit
	//  4. Send SIGKILL if it is still alive
	//
	// If zero or negative, uses a default of 5 seconds.
	ShutdownTimeout time.Duration

	// FullScreen redraws the console in place on every change.
	// Only used when IsTTY is true.
	FullScreen bool

	// ShowSummary enables printing a summary to Stderr after the queue completes.
	ShowSummary bool

	// ShowTimestamps prefixes each output line with an RFC3339 timestamp.
	// Only applies to incremental (non-TTY) rendering mode.
	ShowTimestamps bool

	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for Config.
//
// Defaults:
//   - Library: library.DefaultConfig() with ReportExitStatus on
//   - Queue: "launch"
//   - IsTTY: nil (auto-detect)
//   - FrameInterval: 16ms
//   - ShutdownTimeout: 5 seconds
//   - FullScreen: true
//   - ShowSummary: true
//   - ShowTimestamps: false
//   - LogPrefix: "[%s]"
func DefaultConfig() Config {
	lib := library.DefaultConfig()
	lib.Engine.ReportExitStatus = true
	return Config{
		Library:         lib,
		Queue:           catalog.QueueLaunch,
		FrameInterval:   defaultFrameInterval,
		ShutdownTimeout: defaultShutdownTimeout,
		FullScreen:      true,
		ShowSummary:     true,
		LogPrefix:       "[%s]",
	}
}

func (cfg Config) withDefaults() Config {
	base := DefaultConfig()
	if cfg.Queue == "" {
		cfg.Queue = base.Queue
	}
	if cfg.IsTTY == nil {
		val := renderer.IsTTY()
		cfg.IsTTY = &val
	}
	if !*cfg.IsTTY {
		cfg.FullScreen = false
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = base.FrameInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = base.ShutdownTimeout
	}
	if cfg.LogPrefix == "" {
		cfg.LogPrefix = base.LogPrefix
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	cfg.Library.Watch = false
	cfg.Library.ShutdownTimeout = cfg.ShutdownTimeout
	if cfg.Library.Logger == nil {
		cfg.Library.Logger = cfg.Logger
	}
	return cfg
}

// Run launches the configured queue and drives it to completion.
//
// Orchestration:
//  1. Open the library and look up the program
//  2. Launch the queue (fetching first if needed)
//  3. Each frame: tick the library, render anything new
//  4. Stop when the engine is idle, or shut down when ctx is cancelled
//  5. Print summary (if enabled)
//  6. Return aggregate exit code
//
// Exit codes:
//   - 0: Every process in the queue succeeded
//   - 1: A process failed, could not start, or the launch itself failed
func Run(ctx context.Context, cfg Config) int {
	cfg = cfg.withDefaults()

	var results []renderer.Result
	onExit := cfg.Library.Engine.OnExit
	cfg.Library.Engine.OnExit = func(entry engine.QueueEntry, err error) {
		results = append(results, renderer.Result{Name: entry.String(), Err: err})
		if onExit != nil {
			onExit(entry, err)
		}
	}
	onSpawn := cfg.Library.Engine.OnSpawnFailure
	cfg.Library.Engine.OnSpawnFailure = func(entry engine.QueueEntry, err error) {
		results = append(results, renderer.Result{Name: entry.String(), Err: err})
		if onSpawn != nil {
			onSpawn(entry, err)
		}
	}

	lib, err := library.Open(cfg.Library)
	if err != nil {
		fmt.Fprintf(cfg.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := lib.Close(); err != nil {
			cfg.Logger.Warn("closing library", "error", err)
		}
	}()

	index, ok := lib.Find(cfg.Program)
	if !ok {
		fmt.Fprintf(cfg.Stderr, "Error: %v: %q\n", library.ErrNoProgram, cfg.Program)
		return 1
	}
	name := lib.Programs()[index].Name
	if err := lib.Launch(index, cfg.Queue); err != nil {
		fmt.Fprintf(cfg.Stderr, "Error: %v\n", err)
		return 1
	}

	tm := lib.TaskManager()
	out := &output{cfg: cfg, tm: tm, name: name}

	ticker := time.NewTicker(cfg.FrameInterval)
	defer ticker.Stop()

	for {
		if lib.Update() {
			out.render()
		}
		if tm.Idle() {
			break
		}

		select {
		case <-ctx.Done():
			cfg.Logger.Info("interrupted, shutting down", "cause", context.Cause(ctx))
			tm.Shutdown(cfg.ShutdownTimeout)
			deadline := time.Now().Add(cfg.ShutdownTimeout)
			for !tm.Idle() && time.Now().Before(deadline) {
				tm.Update()
				time.Sleep(time.Millisecond)
			}
			out.render()
			if cfg.ShowSummary {
				renderer.WriteFinalSummary(cfg.Stderr, results)
			}
			return 1
		case <-ticker.C:
		}
	}

	if cfg.ShowSummary {
		renderer.WriteFinalSummary(cfg.Stderr, results)
	}
	return renderer.ExitCodeFromResults(results)
}

// output renders console changes in the configured mode.
type output struct {
	cfg  Config
	tm   *engine.TaskManager
	name string
	seen uint64
}

func (o *output) render() {
	h := o.tm.History()
	if o.cfg.FullScreen {
		renderer.RenderScreen(o.cfg.Stdout, renderer.Screen{
			Title:  o.name,
			Status: renderer.StatusOf(o.tm),
			Lines:  h.Lines(),
		})
		o.seen = h.Total()
		return
	}

	var fresh []string
	fresh, o.seen = renderer.Tail(h.Lines(), h.Total(), o.seen)
	if err := renderer.RenderIncremental(o.cfg.Stdout, fresh, o.name, o.cfg.ShowTimestamps, o.cfg.LogPrefix); err != nil {
		o.cfg.Logger.Warn("writing output", "error", err)
	}
}

// Package library manages the on-disk program library: a folder holding the
// library file, one working directory per program, and the console transcript.
// A Manager owns the engine's TaskManager and turns user requests ("run the
// launch queue of program 2") into queue replacements.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/a2y-d5l/launchpad/catalog"
	"github.com/a2y-d5l/launchpad/engine"
	"github.com/a2y-d5l/launchpad/input"
)

const (
	// DefaultRoot is the library folder used when none is given.
	DefaultRoot = "program_launcher_library"

	// LockFileName guards a library folder against a second launcher.
	LockFileName = ".launchpad.lock"

	// TranscriptFileName receives the raw output of every process.
	TranscriptFileName = "console.log"
)

var (
	// ErrLocked is returned by Open when another launcher holds the library.
	ErrLocked = errors.New("library is in use by another launcher")

	// ErrNoProgram is returned for a program index outside the catalog.
	ErrNoProgram = errors.New("no such program")

	// ErrNoQueue is returned when the program has no queue of that name.
	ErrNoQueue = errors.New("no such queue")

	// ErrBusy is returned when a launch is rejected because a process is running.
	ErrBusy = errors.New("a process is already running")
)

// Config configures a Manager.
type Config struct {
	// Root is the library folder. Created if missing.
	Root string

	// Engine is the base TaskManager configuration. The catalog's settings
	// are applied on top of it, and LibraryRoot is always set to Root.
	Engine engine.Config

	// Overrides, if set, runs after the catalog's settings are applied so
	// explicit caller choices (command-line flags) win over the library file.
	Overrides func(*engine.Config)

	// CommandFactory overrides how commands are created (tests).
	CommandFactory engine.CommandFactory

	// Watch reloads the catalog when the library file changes.
	Watch bool

	// Transcript writes raw process output to console.log in Root.
	Transcript bool

	// ShutdownTimeout bounds graceful termination in Close.
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		Root:            DefaultRoot,
		Engine:          engine.DefaultConfig(),
		Watch:           true,
		Transcript:      true,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Manager is the library folder plus the TaskManager running its programs.
// Like the TaskManager it is driven from a single goroutine.
type Manager struct {
	root       string
	file       string
	catalog    *catalog.Catalog
	tm         *engine.TaskManager
	lock       *flock.Flock
	transcript *os.File
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	timeout    time.Duration
}

// Open prepares the library folder and loads its catalog.
//
// Steps:
//  1. Create Root
//  2. Take the folder lock (ErrLocked if held elsewhere)
//  3. Write the default library file if none exists
//  4. Load and validate the catalog
//  5. Open the transcript and start the file watcher, if configured
func Open(cfg Config) (*Manager, error) {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving library root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating library root: %w", err)
	}

	lock := flock.New(filepath.Join(root, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring library lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}

	m := &Manager{
		root:    root,
		file:    filepath.Join(root, catalog.FileName),
		lock:    lock,
		logger:  logger.With("library", root),
		timeout: cfg.ShutdownTimeout,
	}

	if err := m.open(cfg); err != nil {
		_ = m.release()
		return nil, err
	}
	return m, nil
}

func (m *Manager) open(cfg Config) error {
	created, err := catalog.EnsureDefault(m.file)
	if err != nil {
		return err
	}
	if created {
		m.logger.Info("wrote default library file", "path", m.file)
	}

	m.catalog, err = catalog.Load(m.file, m.root)
	if err != nil {
		return err
	}

	ecfg := cfg.Engine
	m.catalog.Settings.Apply(&ecfg)
	if cfg.Overrides != nil {
		cfg.Overrides(&ecfg)
	}
	ecfg.LibraryRoot = m.root
	if ecfg.Logger == nil {
		ecfg.Logger = m.logger
	}

	if cfg.Transcript {
		m.transcript, err = os.Create(filepath.Join(m.root, TranscriptFileName))
		if err != nil {
			return fmt.Errorf("opening transcript: %w", err)
		}
		ecfg.Transcript = m.transcript
	}

	m.tm = engine.New(ecfg).WithCommandFactory(cfg.CommandFactory)

	if cfg.Watch {
		if err := m.watch(); err != nil {
			return err
		}
	}

	m.logger.Info("library opened", "programs", len(m.catalog.Programs))
	return nil
}

// Root returns the absolute library folder.
func (m *Manager) Root() string { return m.root }

// Programs returns the catalog's programs.
func (m *Manager) Programs() []catalog.Program { return m.catalog.Programs }

// Find returns the index of the program with the given name, ignoring case.
func (m *Manager) Find(name string) (int, bool) {
	for i, p := range m.catalog.Programs {
		if strings.EqualFold(p.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// TaskManager returns the engine driven by this library.
func (m *Manager) TaskManager() *engine.TaskManager { return m.tm }

// Launch replaces the engine queue with the named queue of a program. The
// program's fetch command runs first if its working directory is missing.
func (m *Manager) Launch(program int, queue string) error {
	if program < 0 || program >= len(m.catalog.Programs) {
		return fmt.Errorf("%w: index %d", ErrNoProgram, program)
	}
	p := m.catalog.Programs[program]
	q, ok := p.Queue(queue)
	if !ok {
		return fmt.Errorf("%w: %q has no queue %q", ErrNoQueue, p.Name, queue)
	}
	if !m.tm.ReplaceQueue(q.Commands, p.WorkingDirectory, p.Fetch) {
		return ErrBusy
	}
	m.logger.Info("launch", "program", p.Name, "queue", queue)
	return nil
}

// HandleInput applies one frame of input: it keeps the selection inside the
// program list and consumes a pending launch request. It reports whether a
// launch was attempted; a rejected launch is returned as an error.
func (m *Manager) HandleInput(in input.ReadWriter) (bool, error) {
	in.SetCount(len(m.catalog.Programs))

	queue, ok := in.PendingLaunch()
	if !ok {
		return false, nil
	}
	in.ClearLaunch()
	return true, m.Launch(in.Selection(), queue)
}

// Update reloads the catalog if the library file changed, then advances the
// engine. It never blocks and reports whether the console changed.
func (m *Manager) Update() bool {
	changed := m.pollWatcher()
	if m.tm.Update() {
		changed = true
	}
	return changed
}

// Reload re-reads the library file. On error the current catalog is kept and
// the failure is shown in the console. Engine settings are fixed at Open.
func (m *Manager) Reload() error {
	c, err := catalog.Load(m.file, m.root)
	if err != nil {
		m.logger.Warn("library reload failed", "error", err)
		m.tm.Annotate("library reload failed: " + err.Error())
		return err
	}
	m.catalog = c
	m.logger.Info("library reloaded", "programs", len(c.Programs))
	m.tm.Annotate(fmt.Sprintf("library reloaded: %d program(s)", len(c.Programs)))
	return nil
}

// Close stops any running process, then releases the watcher, the transcript
// and the folder lock.
func (m *Manager) Close() error {
	m.tm.Shutdown(m.timeout)
	// Pick up whatever the process printed while shutting down.
	deadline := time.Now().Add(m.timeout)
	for !m.tm.Idle() && time.Now().Before(deadline) {
		m.tm.Update()
		time.Sleep(time.Millisecond)
	}
	return m.release()
}

func (m *Manager) release() error {
	var errs []error
	if m.watcher != nil {
		errs = append(errs, m.watcher.Close())
		m.watcher = nil
	}
	if m.transcript != nil {
		errs = append(errs, m.transcript.Close())
		m.transcript = nil
	}
	if m.lock != nil {
		errs = append(errs, m.lock.Unlock())
		m.lock = nil
	}
	return errors.Join(errs...)
}

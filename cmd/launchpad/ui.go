package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/a2y-d5l/launchpad/library"
	"github.com/a2y-d5l/launchpad/tui"
)

// logFileName receives logs while the UI owns the terminal.
const logFileName = "launchpad.log"

var uiFrameInterval = tui.DefaultFrameInterval

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive launcher",
	Long: `Open the interactive launcher.

Keys:
  ↑/↓ or k/j   select a program
  1-9          run the selected program's queue with that number
  pgup/pgdn    scroll the console
  q            quit (running commands are stopped)

Logs are written to launchpad.log in the library folder. The library file
is reloaded automatically when it changes.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().DurationVar(&uiFrameInterval, "frame", tui.DefaultFrameInterval, "engine tick interval")
}

func runUI(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(libraryRoot, 0o755); err != nil {
		return fmt.Errorf("creating library root: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(libraryRoot, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	cfg := library.DefaultConfig()
	cfg.Root = libraryRoot
	cfg.Logger = newLogger(logFile, slog.LevelInfo)

	lib, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lib.Close() }()

	p := tea.NewProgram(tui.New(lib, uiFrameInterval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

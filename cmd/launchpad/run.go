package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/a2y-d5l/launchpad/catalog"
	"github.com/a2y-d5l/launchpad/engine"
	"github.com/a2y-d5l/launchpad/runner"
)

var (
	runFullScreen      bool
	runShowSummary     bool
	runShowTimestamps  bool
	runLogPrefix       string
	runMaxLines        int
	runShutdownTimeout time.Duration
	runStopOnFailure   bool
)

var runCmd = &cobra.Command{
	Use:   "run <program> [queue]",
	Short: "Run a program's command queue without the interactive UI",
	Long: `Run one command queue of a program and stream its output.

If the program's directory does not exist yet, its fetch command runs first.
The queue defaults to "launch".

Examples:
  # Build the example program
  launchpad run "Space Boss Battles" update_and_build

  # Launch it, with timestamps for CI logs
  launchpad run "Space Boss Battles" --timestamps

Exit codes:
  0  - Every command in the queue succeeded
  1  - A command failed or could not be started`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runFullScreen, "fullscreen", true, "redraw the console in place (TTY only)")
	runCmd.Flags().BoolVar(&runShowSummary, "summary", true, "print a summary of command results")
	runCmd.Flags().BoolVar(&runShowTimestamps, "timestamps", false, "prefix each output line with an RFC3339 timestamp")
	runCmd.Flags().StringVar(&runLogPrefix, "prefix", "[%s]", "format for the program name prefix (e.g. '[%s]', '%s:')")
	runCmd.Flags().IntVar(&runMaxLines, "max-lines", 0, "console history size (overrides the library file)")
	runCmd.Flags().DurationVar(&runShutdownTimeout, "shutdown-timeout", 5*time.Second, "time to wait for graceful shutdown before force-killing")
	runCmd.Flags().BoolVar(&runStopOnFailure, "stop-on-failure", false, "skip the rest of the queue when a command fails (overrides the library file)")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel(nil)

	cfg := runner.DefaultConfig()
	cfg.Library.Root = libraryRoot
	cfg.Program = args[0]
	cfg.Queue = catalog.QueueLaunch
	if len(args) > 1 {
		cfg.Queue = args[1]
	}
	cfg.FullScreen = runFullScreen
	cfg.ShowSummary = runShowSummary
	cfg.ShowTimestamps = runShowTimestamps
	cfg.LogPrefix = runLogPrefix
	cfg.ShutdownTimeout = runShutdownTimeout
	cfg.Stdout = cmd.OutOrStdout()
	cfg.Stderr = cmd.ErrOrStderr()
	cfg.Logger = newLogger(cmd.ErrOrStderr(), slog.LevelWarn)
	cfg.Library.Overrides = flagOverrides(cmd)

	if code := runner.Run(ctx, cfg); code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

// flagOverrides applies the engine flags the user set explicitly. It runs after
// the library file's settings, so only changed flags replace file values.
func flagOverrides(cmd *cobra.Command) func(*engine.Config) {
	flags := cmd.Flags()
	return func(c *engine.Config) {
		if flags.Changed("max-lines") && runMaxLines > 0 {
			c.MaxLines = runMaxLines
		}
		if flags.Changed("stop-on-failure") {
			c.ClearQueueOnFailure = runStopOnFailure
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a2y-d5l/launchpad/library"
)

var (
	libraryRoot string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "Fetch, build and launch programs from a local library",
	Long: `launchpad manages a library of programs kept in one folder.

Each program has an optional fetch step (usually a git clone) and named
command queues such as "launch" or "update_and_build". Running a queue
executes its commands one at a time and streams their output into a console.

The library file (library.toml) is created with an example entry the first
time a library folder is used.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCodeError carries a process exit code out of a RunE without printing.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// Execute runs the root command and returns an exit code.
// The caller (main) should call os.Exit with this code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			return ec.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&libraryRoot, "library", "l", library.DefaultRoot, "library folder")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(listCmd, runCmd, uiCmd)
}

// newLogger returns a text slog logger at level, or Debug with --verbose.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// signalContext is cancelled with the received signal as its cause on
// SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			cancel(fmt.Errorf("received signal: %v", sig))
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

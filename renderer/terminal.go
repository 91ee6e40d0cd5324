package renderer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/a2y-d5l/launchpad/engine"
)

// clearScreen clears the terminal screen and moves the cursor to the top-left.
//
// ANSI codes used:
//   - \x1b[H: Move cursor to home position (1,1)
//   - \x1b[2J: Clear entire screen
func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\x1b[H\x1b[2J")
}

// Screen is what RenderScreen draws: a header for the current activity and
// the console history below it.
type Screen struct {
	// Title names the program being launched.
	Title string

	// Status is "running <cmd>", "queued N" or "idle".
	Status string

	// Lines is the console history, oldest first.
	Lines []string
}

// StatusOf describes what a TaskManager is doing, for headers.
func StatusOf(tm *engine.TaskManager) string {
	if cur, ok := tm.Current(); ok {
		if n := tm.QueueLen(); n > 0 {
			return fmt.Sprintf("running %s (%d queued)", cur, n)
		}
		return "running " + cur.String()
	}
	if n := tm.QueueLen(); n > 0 {
		return fmt.Sprintf("%d queued", n)
	}
	return "idle"
}

// RenderScreen performs a full-screen redraw of the console. This is the
// renderer for interactive TTY mode.
//
// Output format example:
//
//	Space Boss Battles… [running cargo build --release]
//	    Compiling space_boss_battles v0.1.0
//	    Finished release [optimized] target(s)
//
//	Press Ctrl+C to stop. Output updates in real time.
func RenderScreen(w io.Writer, s Screen) {
	clearScreen(w)

	fmt.Fprintf(w, "%s… [%s]\n", s.Title, s.Status)
	for _, line := range s.Lines {
		if strings.TrimSpace(line) == "" {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "    %s\n", line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Press Ctrl+C to stop. Output updates in real time.")
}

// WriteFinalSummary writes a concise summary of every finished process.
// Callers usually pass os.Stderr so the summary stays visible when stdout
// is redirected.
//
// Example output:
//
//	Summary:
//	  - git clone https://github.com/jutuon/space-boss-battles space_boss_battles: ok
//	  - cargo run --release: exit code 101
func WriteFinalSummary(w io.Writer, results []Result) {
	fmt.Fprintln(w, "\nSummary:")
	if len(results) == 0 {
		fmt.Fprintln(w, "  (nothing ran)")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "  - %s: %s\n", r.Name, engine.FormatExitError(r.Err))
	}
}

// IsTTY reports whether stdout is an interactive terminal. It is used to
// choose between full-screen and incremental rendering.
//
// Returns false for piped output, redirected output, and CI environments
// without a TTY.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

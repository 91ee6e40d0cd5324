// Package renderer formats the engine's console history for plain output
// streams. It holds no engine state of its own: callers pass the history
// lines and its running total, and the renderer works out what is new.
//
// The renderer supports two modes:
//   - Full-screen TTY mode: the console is redrawn in place on change
//   - Incremental non-TTY mode: each new line is printed once, for CI/logs
//
// Basic usage in a headless loop:
//
//	var seen uint64
//	for !tm.Idle() {
//	    if tm.Update() {
//	        h := tm.History()
//	        var fresh []string
//	        fresh, seen = renderer.Tail(h.Lines(), h.Total(), seen)
//	        renderer.RenderIncremental(os.Stdout, fresh, name, false, "[%s]")
//	    }
//	}
package renderer

// Result is the outcome of one finished process, as reported by the engine's
// exit hook.
type Result struct {
	// Name is the rendered command, e.g. "cargo build --release".
	Name string

	// Err is the Wait error; nil means exit code 0.
	Err error
}

// Tail returns the lines appended to a bounded history since the caller last
// saw it, plus the new watermark to pass next time.
//
// lines is the retained history (oldest first) and total the number of lines
// ever appended. If more lines arrived than the history still holds, only the
// retained ones are returned; the rest were evicted before anyone saw them.
//
// Example:
//
//	fresh, seen := renderer.Tail(h.Lines(), h.Total(), seen)
func Tail(lines []string, total, seen uint64) ([]string, uint64) {
	if total <= seen {
		return nil, total
	}
	n := total - seen
	if n > uint64(len(lines)) {
		n = uint64(len(lines))
	}
	return lines[len(lines)-int(n):], total
}

// ExitCodeFromResults determines the exit code for a headless session.
//
// Logic:
//   - If any process has a non-nil Err, return 1 (failure)
//   - If all processes succeeded (Err == nil), return 0 (success)
func ExitCodeFromResults(results []Result) int {
	for _, r := range results {
		if r.Err != nil {
			return 1
		}
	}
	return 0
}

package engine

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
)

// FormatExitError formats a process exit error into a human-readable string.
// This function extracts detailed information from exec.ExitError to provide
// meaningful status messages.
//
// Return values:
//   - "ok": Process exited successfully (err == nil)
//   - "error: <msg>": Generic error (not an exec.ExitError)
//   - "exit code N": Process exited with code N
//   - "killed by signal SIG (exit code N)": Process was terminated by signal
//
// Example output:
//   - FormatExitError(nil) → "ok"
//   - FormatExitError(exit code 1) → "exit code 1"
//   - FormatExitError(SIGKILL) → "killed by signal killed (exit code -1)"
func FormatExitError(err error) string {
	if err == nil {
		return "ok"
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Sprintf("error: %v", err)
	}

	exitCode := exitErr.ExitCode()

	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if status.Signaled() {
			return fmt.Sprintf("killed by signal %v (exit code %d)", status.Signal(), exitCode)
		}
	}

	return fmt.Sprintf("exit code %d", exitCode)
}

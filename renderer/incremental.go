package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// RenderIncremental writes lines to w without clearing the screen or
// buffering. This is the renderer for non-TTY environments such as CI/CD
// pipelines, log files, and piped output.
//
// Output format (without timestamps):
//
//	[Space Boss Battles] output line 1
//	[Space Boss Battles] output line 2
//
// Output format (with timestamps):
//
//	[2024-11-20T15:30:45Z] [Space Boss Battles] output line 1
//
// Prefix format examples:
//   - "[%s]": [Name] line
//   - "%s:": Name: line
//
// An empty name drops the prefix entirely. Write errors are returned as soon
// as they happen.
func RenderIncremental(w io.Writer, lines []string, name string, showTimestamps bool, logPrefix string) error {
	if logPrefix == "" {
		logPrefix = "[%s]"
	}

	prefix := ""
	if name != "" {
		prefix = fmt.Sprintf(logPrefix, name) + " "
	}

	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")

		var err error
		if showTimestamps {
			timestamp := time.Now().UTC().Format(time.RFC3339)
			_, err = fmt.Fprintf(w, "[%s] %s%s\n", timestamp, prefix, line)
		} else {
			_, err = fmt.Fprintf(w, "%s%s\n", prefix, line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

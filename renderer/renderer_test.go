package renderer_test

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2y-d5l/launchpad/engine"
	"github.com/a2y-d5l/launchpad/renderer"
)

// TestTail verifies watermark tailing over a bounded history.
func TestTail(t *testing.T) {
	h := engine.NewHistory(3, 0)

	fresh, seen := renderer.Tail(h.Lines(), h.Total(), 0)
	assert.Empty(t, fresh)
	assert.Equal(t, uint64(0), seen)

	h.Append("a", "b")
	fresh, seen = renderer.Tail(h.Lines(), h.Total(), seen)
	assert.Equal(t, []string{"a", "b"}, fresh)

	h.Append("c")
	fresh, seen = renderer.Tail(h.Lines(), h.Total(), seen)
	assert.Equal(t, []string{"c"}, fresh)

	fresh, seen = renderer.Tail(h.Lines(), h.Total(), seen)
	assert.Empty(t, fresh)
	assert.Equal(t, uint64(3), seen)
}

// TestTailAfterEviction verifies lines lost to eviction are skipped.
func TestTailAfterEviction(t *testing.T) {
	h := engine.NewHistory(3, 0)
	h.Append("a")
	_, seen := renderer.Tail(h.Lines(), h.Total(), 0)

	for i := range 10 {
		h.Append(fmt.Sprintf("l%d", i))
	}
	fresh, seen := renderer.Tail(h.Lines(), h.Total(), seen)
	assert.Equal(t, []string{"l7", "l8", "l9"}, fresh)
	assert.Equal(t, uint64(11), seen)
}

// TestRenderIncremental verifies prefixes and line trimming.
func TestRenderIncremental(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderer.RenderIncremental(&buf, []string{"one", "two\r"}, "Game", false, "[%s]"))
	assert.Equal(t, "[Game] one\n[Game] two\n", buf.String())
}

// TestRenderIncrementalWithCustomPrefix verifies custom prefix formatting.
func TestRenderIncrementalWithCustomPrefix(t *testing.T) {
	prefixes := map[string]string{
		"[%s]":       "[P] out\n",
		"%s:":        "P: out\n",
		"(%s)":       "(P) out\n",
		">>> %s >>>": ">>> P >>> out\n",
		"":           "[P] out\n",
	}

	for prefix, want := range prefixes {
		var buf bytes.Buffer
		require.NoError(t, renderer.RenderIncremental(&buf, []string{"out"}, "P", false, prefix))
		assert.Equal(t, want, buf.String(), "prefix %q", prefix)
	}
}

// TestRenderIncrementalNoName verifies an empty name drops the prefix.
func TestRenderIncrementalNoName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderer.RenderIncremental(&buf, []string{"plain"}, "", false, "[%s]"))
	assert.Equal(t, "plain\n", buf.String())
}

// TestRenderIncrementalWithTimestamps verifies timestamp formatting.
func TestRenderIncrementalWithTimestamps(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderer.RenderIncremental(&buf, []string{"test output"}, "TestProc", true, "[%s]"))
	assert.Regexp(t, regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\] \[TestProc\] test output\n$`), buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

// TestRenderIncrementalWriteError verifies write errors are surfaced.
func TestRenderIncrementalWriteError(t *testing.T) {
	err := renderer.RenderIncremental(failingWriter{}, []string{"x"}, "", false, "")
	assert.EqualError(t, err, "disk full")
}

// TestRenderScreen verifies the full-screen layout.
func TestRenderScreen(t *testing.T) {
	var buf bytes.Buffer
	renderer.RenderScreen(&buf, renderer.Screen{
		Title:  "Space Boss Battles",
		Status: "running cargo build",
		Lines:  []string{"Compiling", "", "Finished"},
	})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1b[H\x1b[2J"), "screen is cleared first")
	assert.Contains(t, out, "Space Boss Battles… [running cargo build]\n")
	assert.Contains(t, out, "    Compiling\n\n    Finished\n")
	assert.Contains(t, out, "Press Ctrl+C to stop.")
}

// TestStatusOf verifies header status strings.
func TestStatusOf(t *testing.T) {
	tm := engine.New(engine.DefaultConfig())
	assert.Equal(t, "idle", renderer.StatusOf(tm))

	tm.ReplaceQueue([]engine.CommandSpec{{Executable: "true"}, {Executable: "true"}}, t.TempDir(), nil)
	assert.Equal(t, "2 queued", renderer.StatusOf(tm))
	tm.Shutdown(0)
}

// TestExitCodeFromResults verifies exit code calculation.
func TestExitCodeFromResults(t *testing.T) {
	assert.Equal(t, 0, renderer.ExitCodeFromResults(nil))
	assert.Equal(t, 0, renderer.ExitCodeFromResults([]renderer.Result{{Name: "a"}, {Name: "b"}}))
	assert.Equal(t, 1, renderer.ExitCodeFromResults([]renderer.Result{{Name: "a"}, {Name: "b", Err: errors.New("exit status 1")}}))
}

// TestWriteFinalSummary verifies the summary format.
func TestWriteFinalSummary(t *testing.T) {
	var buf bytes.Buffer
	renderer.WriteFinalSummary(&buf, []renderer.Result{
		{Name: "git pull"},
		{Name: "cargo build", Err: errors.New("boom")},
	})
	assert.Equal(t, "\nSummary:\n  - git pull: ok\n  - cargo build: error: boom\n", buf.String())

	buf.Reset()
	renderer.WriteFinalSummary(&buf, nil)
	assert.Contains(t, buf.String(), "(nothing ran)")
}

// TestIsTTY verifies TTY detection does not panic under go test, where
// stdout is usually not a terminal.
func TestIsTTY(t *testing.T) {
	_ = renderer.IsTTY()
}

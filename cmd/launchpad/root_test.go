package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2y-d5l/launchpad/catalog"
	"github.com/a2y-d5l/launchpad/engine"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestListWritesDefaultLibrary(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lib")

	out, _, err := execute(t, "list", "--library", root)
	require.NoError(t, err)

	assert.Contains(t, out, "1. Space Boss Battles")
	assert.Contains(t, out, "fetch:     git clone https://github.com/jutuon/space-boss-battles space_boss_battles")
	assert.Contains(t, out, "     - cargo run --release")
	assert.FileExists(t, filepath.Join(root, catalog.FileName))
}

func TestRunQueue(t *testing.T) {
	root := t.TempDir()
	library := `
[[programs]]
name = "Echo"
directory_name = "echo"
  [programs.fetch]
  executable = "mkdir"
  arguments = ["echo"]
  [[programs.queues]]
  name = "launch"
    [[programs.queues.commands]]
    executable = "echo"
    arguments = ["it works"]
  [[programs.queues]]
  name = "broken"
    [[programs.queues.commands]]
    executable = "sh"
    arguments = ["-c", "exit 4"]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, catalog.FileName), []byte(library), 0o644))

	out, stderr, err := execute(t, "run", "echo", "--library", root, "--fullscreen=false")
	require.NoError(t, err)
	assert.Contains(t, out, "[Echo] it works\n")
	assert.Contains(t, stderr, "  - echo it works: ok")

	_, _, err = execute(t, "run", "Echo", "broken", "--library", root, "--fullscreen=false")
	var ec exitCodeError
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 1, ec.code)
}

func TestFlagOverridesOnlyChangedFlags(t *testing.T) {
	savedMax, savedStop := runMaxLines, runStopOnFailure
	t.Cleanup(func() { runMaxLines, runStopOnFailure = savedMax, savedStop })

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&runMaxLines, "max-lines", 0, "")
	cmd.Flags().BoolVar(&runStopOnFailure, "stop-on-failure", false, "")

	// Values from the library file survive untouched flags.
	cfg := engine.Config{MaxLines: 100, ClearQueueOnFailure: true}
	flagOverrides(cmd)(&cfg)
	assert.Equal(t, 100, cfg.MaxLines)
	assert.True(t, cfg.ClearQueueOnFailure)

	require.NoError(t, cmd.Flags().Set("max-lines", "3"))
	require.NoError(t, cmd.Flags().Set("stop-on-failure", "false"))
	flagOverrides(cmd)(&cfg)
	assert.Equal(t, 3, cfg.MaxLines)
	assert.False(t, cfg.ClearQueueOnFailure)
}

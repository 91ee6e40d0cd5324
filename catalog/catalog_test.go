package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2y-d5l/launchpad/catalog"
	"github.com/a2y-d5l/launchpad/engine"
)

func TestParseDefaultLibrary(t *testing.T) {
	root := t.TempDir()
	c, err := catalog.Parse(catalog.DefaultLibrary, root)
	require.NoError(t, err)

	require.Len(t, c.Programs, 1)
	p := c.Programs[0]
	assert.Equal(t, "Space Boss Battles", p.Name)
	assert.Equal(t, filepath.Join(root, "space_boss_battles"), p.WorkingDirectory)
	require.NotNil(t, p.Fetch)
	assert.Equal(t, engine.CommandSpec{
		Executable: "git",
		Arguments:  []string{"clone", "https://github.com/jutuon/space-boss-battles", "space_boss_battles"},
	}, *p.Fetch)

	launch, ok := p.Queue(catalog.QueueLaunch)
	require.True(t, ok)
	assert.Equal(t, []engine.CommandSpec{{Executable: "cargo", Arguments: []string{"run", "--release"}}}, launch.Commands)

	build, ok := p.Queue(catalog.QueueUpdateAndBuild)
	require.True(t, ok)
	assert.Equal(t, []engine.CommandSpec{
		{Executable: "git", Arguments: []string{"pull"}},
		{Executable: "cargo", Arguments: []string{"build", "--release"}},
	}, build.Commands)

	assert.Equal(t, 100, c.Settings.MaxLines)
	require.NotNil(t, c.Settings.ReportExitStatus)
	assert.True(t, *c.Settings.ReportExitStatus)
	assert.Nil(t, c.Settings.ClearQueueOnFailure)
}

func TestParseExplicitQueues(t *testing.T) {
	text := `
[[programs]]
name = "Scripts"
directory_name = "scripts"
build_system = "make"

  [programs.fetch]
  executable = "git"
  arguments = ["clone", "https://example.com/scripts.git", "scripts"]

  [[programs.queues]]
  name = "launch"
    [[programs.queues.commands]]
    executable = "./run.sh"
    arguments = ["--fast"]

  [[programs.queues]]
  name = "test"
    [[programs.queues.commands]]
    executable = "make"
    arguments = ["test"]
`
	c, err := catalog.Parse(text, "/lib")
	require.NoError(t, err)
	p := c.Programs[0]

	require.NotNil(t, p.Fetch)
	assert.Equal(t, "git clone https://example.com/scripts.git scripts", p.Fetch.String())

	names := make([]string, len(p.CommandQueues))
	for i, q := range p.CommandQueues {
		names[i] = q.Name
	}
	assert.Equal(t, []string{"launch", "update_and_build", "test"}, names)

	launch, _ := p.Queue("launch")
	assert.Equal(t, "./run.sh --fast", launch.Commands[0].String(), "explicit queue overrides expansion")

	build, _ := p.Queue("update_and_build")
	assert.Equal(t, []engine.CommandSpec{{Executable: "make"}}, build.Commands, "no git pull without a repository")
}

func TestParseBuildSystemCaseInsensitive(t *testing.T) {
	text := `
[[programs]]
name = "Old"
git_repository = "https://example.com/old"
directory_name = "old"
build_system = "Cargo"
`
	c, err := catalog.Parse(text, "/lib")
	require.NoError(t, err)
	_, ok := c.Programs[0].Queue(catalog.QueueLaunch)
	assert.True(t, ok)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing name", `
[[programs]]
directory_name = "x"
`},
		{"missing directory", `
[[programs]]
name = "x"
`},
		{"directory escapes root", `
[[programs]]
name = "x"
directory_name = "../outside"
`},
		{"absolute directory", `
[[programs]]
name = "x"
directory_name = "/etc"
`},
		{"unknown build system", `
[[programs]]
name = "x"
directory_name = "x"
build_system = "ant"
`},
		{"empty queue", `
[[programs]]
name = "x"
directory_name = "x"
  [[programs.queues]]
  name = "run"
`},
		{"command without executable", `
[[programs]]
name = "x"
directory_name = "x"
  [[programs.queues]]
  name = "run"
    [[programs.queues.commands]]
    arguments = ["a"]
`},
		{"duplicate names", `
[[programs]]
name = "x"
directory_name = "a"
[[programs]]
name = "x"
directory_name = "b"
`},
		{"unknown key", `
[[programs]]
name = "x"
directory_name = "x"
buildsystem = "cargo"
`},
		{"negative max lines", `
[settings]
max_lines = -1
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse(tt.text, "/lib")
			require.Error(t, err)
			assert.ErrorIs(t, err, catalog.ErrInvalid)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := catalog.Parse("[[programs]\nname=", "/lib")
	require.Error(t, err)
	assert.NotErrorIs(t, err, catalog.ErrInvalid)
}

func TestEnsureDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), catalog.FileName)

	created, err := catalog.EnsureDefault(path)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o644))
	created, err = catalog.EnsureDefault(path)
	require.NoError(t, err)
	assert.False(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(data), "existing library is never overwritten")
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, catalog.FileName)
	_, err := catalog.EnsureDefault(path)
	require.NoError(t, err)

	c, err := catalog.Load(path, root)
	require.NoError(t, err)
	assert.Len(t, c.Programs, 1)

	_, err = catalog.Load(filepath.Join(root, "missing.toml"), root)
	assert.Error(t, err)
}

func TestSettingsApply(t *testing.T) {
	yes, no := true, false
	cfg := engine.DefaultConfig()
	cfg.ClearQueueOnSpawnFailure = true

	catalog.Settings{ClearQueueOnFailure: &yes, ReportExitStatus: &yes}.Apply(&cfg)
	assert.Equal(t, engine.DefaultMaxLines, cfg.MaxLines)
	assert.True(t, cfg.ClearQueueOnFailure)
	assert.True(t, cfg.ReportExitStatus)
	assert.True(t, cfg.ClearQueueOnSpawnFailure, "unset keys leave the config alone")

	catalog.Settings{MaxLines: 500, ReportExitStatus: &no}.Apply(&cfg)
	assert.Equal(t, 500, cfg.MaxLines)
	assert.False(t, cfg.ReportExitStatus)
}

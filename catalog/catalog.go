// Package catalog loads the program library file: the list of programs the
// launcher knows about, how to fetch each one, and the named command queues
// that build or run it.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/a2y-d5l/launchpad/engine"
)

// FileName is the library file inside the library root.
const FileName = "library.toml"

// Queue names produced by build-system expansion.
const (
	QueueLaunch         = "launch"
	QueueUpdateAndBuild = "update_and_build"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid library")

// Catalog is a loaded, validated library file.
type Catalog struct {
	Settings Settings
	Programs []Program
}

// Program is one launchable program.
type Program struct {
	Name string

	// WorkingDirectory is where the program's queues run: <root>/<directory_name>.
	WorkingDirectory string

	// Fetch creates WorkingDirectory when it does not exist. Nil means the
	// directory must be created by hand.
	Fetch *engine.CommandSpec

	CommandQueues []CommandQueue
}

// Queue returns the named command queue.
func (p Program) Queue(name string) (CommandQueue, bool) {
	for _, q := range p.CommandQueues {
		if q.Name == name {
			return q, true
		}
	}
	return CommandQueue{}, false
}

// CommandQueue is an ordered batch of commands run together, e.g. "update_and_build".
type CommandQueue struct {
	Name     string
	Commands []engine.CommandSpec
}

// Settings are launcher options stored in the library file. Unset keys leave
// the engine configuration as the caller built it.
type Settings struct {
	MaxLines                 int   `toml:"max_lines"`
	ClearQueueOnSpawnFailure *bool `toml:"clear_queue_on_spawn_failure"`
	ClearQueueOnFailure      *bool `toml:"clear_queue_on_failure"`
	ReportExitStatus         *bool `toml:"report_exit_status"`
}

// Apply copies the settings that are present into an engine configuration.
func (s Settings) Apply(cfg *engine.Config) {
	if s.MaxLines > 0 {
		cfg.MaxLines = s.MaxLines
	}
	if s.ClearQueueOnSpawnFailure != nil {
		cfg.ClearQueueOnSpawnFailure = *s.ClearQueueOnSpawnFailure
	}
	if s.ClearQueueOnFailure != nil {
		cfg.ClearQueueOnFailure = *s.ClearQueueOnFailure
	}
	if s.ReportExitStatus != nil {
		cfg.ReportExitStatus = *s.ReportExitStatus
	}
}

type fileFormat struct {
	Settings Settings      `toml:"settings"`
	Programs []fileProgram `toml:"programs"`
}

type fileProgram struct {
	Name          string              `toml:"name"`
	GitRepository string              `toml:"git_repository"`
	DirectoryName string              `toml:"directory_name"`
	BuildSystem   string              `toml:"build_system"`
	Fetch         *engine.CommandSpec `toml:"fetch"`
	Queues        []fileQueue         `toml:"queues"`
}

type fileQueue struct {
	Name     string               `toml:"name"`
	Commands []engine.CommandSpec `toml:"commands"`
}

// Load reads and validates the library file at path. Program working
// directories are resolved against root.
func Load(path, root string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	return Parse(string(data), root)
}

// Parse decodes library text. Unknown keys are rejected so typos surface
// instead of silently doing nothing.
func Parse(text, root string) (*Catalog, error) {
	var f fileFormat
	md, err := toml.Decode(text, &f)
	if err != nil {
		return nil, fmt.Errorf("parsing library: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if f.Settings.MaxLines < 0 {
		return nil, fmt.Errorf("%w: settings.max_lines must not be negative", ErrInvalid)
	}

	c := &Catalog{Settings: f.Settings}
	seen := make(map[string]bool, len(f.Programs))
	for i, fp := range f.Programs {
		p, err := normalizeProgram(fp, root)
		if err != nil {
			return nil, fmt.Errorf("program %d: %w", i+1, err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate program name %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
		c.Programs = append(c.Programs, p)
	}
	return c, nil
}

func normalizeProgram(fp fileProgram, root string) (Program, error) {
	name := strings.TrimSpace(fp.Name)
	if name == "" {
		return Program{}, fmt.Errorf("%w: missing name", ErrInvalid)
	}
	dir, err := resolveDir(root, fp.DirectoryName)
	if err != nil {
		return Program{}, fmt.Errorf("%q: %w", name, err)
	}

	p := Program{Name: name, WorkingDirectory: dir}

	switch {
	case fp.Fetch != nil:
		if fp.Fetch.Executable == "" {
			return Program{}, fmt.Errorf("%w: %q: fetch has no executable", ErrInvalid, name)
		}
		p.Fetch = fp.Fetch
	case fp.GitRepository != "":
		p.Fetch = &engine.CommandSpec{
			Executable: "git",
			Arguments:  []string{"clone", fp.GitRepository, fp.DirectoryName},
		}
	}

	if fp.BuildSystem != "" {
		queues, err := expandBuildSystem(fp.BuildSystem, fp.GitRepository != "")
		if err != nil {
			return Program{}, fmt.Errorf("%q: %w", name, err)
		}
		p.CommandQueues = queues
	}

	for _, q := range fp.Queues {
		if strings.TrimSpace(q.Name) == "" {
			return Program{}, fmt.Errorf("%w: %q: queue without a name", ErrInvalid, name)
		}
		if len(q.Commands) == 0 {
			return Program{}, fmt.Errorf("%w: %q: queue %q has no commands", ErrInvalid, name, q.Name)
		}
		for _, c := range q.Commands {
			if c.Executable == "" {
				return Program{}, fmt.Errorf("%w: %q: queue %q has a command without executable", ErrInvalid, name, q.Name)
			}
		}
		p.setQueue(CommandQueue{Name: q.Name, Commands: q.Commands})
	}

	return p, nil
}

// setQueue replaces a queue of the same name or appends a new one.
func (p *Program) setQueue(q CommandQueue) {
	for i := range p.CommandQueues {
		if p.CommandQueues[i].Name == q.Name {
			p.CommandQueues[i] = q
			return
		}
	}
	p.CommandQueues = append(p.CommandQueues, q)
}

func resolveDir(root, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: missing directory_name", ErrInvalid)
	}
	if filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: directory_name %q must be a relative path inside the library", ErrInvalid, name)
	}
	return filepath.Join(root, name), nil
}

package catalog

import (
	"fmt"
	"strings"

	"github.com/a2y-d5l/launchpad/engine"
)

// buildSystem knows how to run and build a checked-out program.
type buildSystem struct {
	launch []engine.CommandSpec
	build  []engine.CommandSpec
}

var buildSystems = map[string]buildSystem{
	"cargo": {
		launch: []engine.CommandSpec{{Executable: "cargo", Arguments: []string{"run", "--release"}}},
		build:  []engine.CommandSpec{{Executable: "cargo", Arguments: []string{"build", "--release"}}},
	},
	"go": {
		launch: []engine.CommandSpec{{Executable: "go", Arguments: []string{"run", "."}}},
		build:  []engine.CommandSpec{{Executable: "go", Arguments: []string{"build", "./..."}}},
	},
	"make": {
		launch: []engine.CommandSpec{{Executable: "make", Arguments: []string{"run"}}},
		build:  []engine.CommandSpec{{Executable: "make"}},
	},
}

var gitPull = engine.CommandSpec{Executable: "git", Arguments: []string{"pull"}}

// BuildSystems lists the recognized build_system values.
func BuildSystems() []string {
	return []string{"cargo", "go", "make"}
}

// expandBuildSystem returns the launch and update_and_build queues for name.
// Names are case-insensitive, so "Cargo" from older library files works.
func expandBuildSystem(name string, hasRepository bool) ([]CommandQueue, error) {
	bs, ok := buildSystems[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown build_system %q (want one of %s)",
			ErrInvalid, name, strings.Join(BuildSystems(), ", "))
	}

	var build []engine.CommandSpec
	if hasRepository {
		build = append(build, gitPull)
	}
	build = append(build, bs.build...)

	return []CommandQueue{
		{Name: QueueLaunch, Commands: append([]engine.CommandSpec(nil), bs.launch...)},
		{Name: QueueUpdateAndBuild, Commands: build},
	}, nil
}

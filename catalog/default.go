package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultLibrary is written to a fresh library root.
const DefaultLibrary = `# Program launcher library file

[settings]
max_lines = 100
report_exit_status = true

[[programs]]
name = "Space Boss Battles"
git_repository = "https://github.com/jutuon/space-boss-battles"
directory_name = "space_boss_battles"
build_system = "cargo"
`

// EnsureDefault writes DefaultLibrary to path unless a file already exists
// there. It reports whether the file was created.
func EnsureDefault(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("creating default library: %w", err)
	}
	if _, err := f.WriteString(DefaultLibrary); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("writing default library: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("writing default library: %w", err)
	}
	return true, nil
}

package library

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch observes the library folder rather than the file itself: editors
// that save by rename would otherwise detach a file watch.
func (m *Manager) watch() error {
	w, err := fsnotify.NewBufferedWatcher(16)
	if err != nil {
		return fmt.Errorf("creating library watcher: %w", err)
	}
	if err := w.Add(m.root); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching library root: %w", err)
	}
	m.watcher = w
	return nil
}

// pollWatcher drains pending watcher events without blocking and reloads the
// catalog at most once, however many events a save produced.
func (m *Manager) pollWatcher() bool {
	if m.watcher == nil {
		return false
	}

	dirty := false
	for {
		select {
		case ev, ok := <-m.watcher.Events:
			if !ok {
				m.watcher = nil
				return m.reloadIf(dirty)
			}
			if filepath.Clean(ev.Name) == m.file && ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				dirty = true
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				m.watcher = nil
				return m.reloadIf(dirty)
			}
			m.logger.Warn("library watcher error", "error", err)
		default:
			return m.reloadIf(dirty)
		}
	}
}

func (m *Manager) reloadIf(dirty bool) bool {
	if !dirty {
		return false
	}
	_ = m.Reload()
	return true
}

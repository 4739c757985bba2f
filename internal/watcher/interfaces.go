// Package watcher re-runs extraction when project sources change.
package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Rescanner re-extracts the projects affected by a batch of changed files.
type Rescanner interface {
	Rescan(ctx context.Context, changed []string) (RescanStats, error)
}

// RescanStats summarizes one rescan.
type RescanStats struct {
	Projects int
	Files    int
	Concepts int
}

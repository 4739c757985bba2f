package watcher

import (
	"context"
	"log"
)

// WatchCoordinator routes debounced file changes to a Rescanner. File events
// arriving during a rescan are held back until it finishes.
type WatchCoordinator struct {
	files     FileWatcher
	rescanner Rescanner
	ctx       context.Context
}

// NewWatchCoordinator creates a new watch coordinator.
func NewWatchCoordinator(files FileWatcher, rescanner Rescanner) *WatchCoordinator {
	return &WatchCoordinator{files: files, rescanner: rescanner}
}

// Start watches until ctx is cancelled, then stops the file watcher.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	c.ctx = ctx
	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}
	<-ctx.Done()
	c.cleanup()
	return nil
}

func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.files.Pause()
	defer c.files.Resume()

	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	log.Printf("Processing %d file change(s)...", len(files))
	stats, err := c.rescanner.Rescan(ctx, files)
	if err != nil {
		log.Printf("Error: rescan failed: %v", err)
		return
	}
	log.Printf("✓ Rescanned %d project(s) (%d files, %d concepts)", stats.Projects, stats.Files, stats.Concepts)
}

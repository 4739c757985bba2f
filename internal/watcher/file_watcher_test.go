package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher succeeds on valid directories and fails on missing ones
// - A source file change fires the callback after the debounce
// - Rapid changes are coalesced and deduplicated into one sorted batch
// - Files in new subdirectories are picked up
// - Extension filtering ignores other files and declaration files
// - Configured file names fire regardless of extension
// - node_modules is never watched
// - Pause accumulates events and Resume fires them
// - Stop is idempotent and safe without Start

const testDebounce = 50 * time.Millisecond

var tsOptions = Options{
	Extensions: []string{".ts", ".tsx"},
	FileNames:  []string{"tsconfig.json"},
	Debounce:   testDebounce,
}

type batches struct {
	mu  sync.Mutex
	got [][]string
	ch  chan struct{}
}

func newBatches() *batches {
	return &batches{ch: make(chan struct{}, 16)}
}

func (b *batches) callback(files []string) {
	b.mu.Lock()
	b.got = append(b.got, files)
	b.mu.Unlock()
	b.ch <- struct{}{}
}

func (b *batches) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-b.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called after timeout")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.got[len(b.got)-1]
}

func (b *batches) none(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-b.ch:
		t.Fatal("unexpected callback")
	case <-time.After(d):
	}
}

func startWatcher(t *testing.T, dir string, opts Options) (FileWatcher, *batches) {
	t.Helper()
	w, err := NewFileWatcher([]string{dir}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	b := newBatches()
	require.NoError(t, w.Start(context.Background(), b.callback))
	// Let the watcher settle
	time.Sleep(50 * time.Millisecond)
	return w, b
}

func TestNewFileWatcher(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, tsOptions)
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	w, err = NewFileWatcher([]string{filepath.Join(t.TempDir(), "missing")}, tsOptions)
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir, tsOptions)

	file := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("export class A {}"), 0o644))

	assert.Equal(t, []string{file}, b.wait(t))
}

func TestFileWatcher_CoalescesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir, tsOptions)

	a := filepath.Join(dir, "a.ts")
	c := filepath.Join(dir, "c.tsx")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(c, []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	}

	assert.Equal(t, []string{a, c}, b.wait(t))
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir, tsOptions)

	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher time to add the directory
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "b.ts")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.Contains(t, b.wait(t), file)
}

func TestFileWatcher_ConfigFileName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir, tsOptions)

	file := filepath.Join(dir, "tsconfig.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	assert.Equal(t, []string{file}, b.wait(t))
}

func TestFileWatcher_IgnoresNodeModules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	nm := filepath.Join(dir, "node_modules", "lib")
	require.NoError(t, os.MkdirAll(nm, 0o755))
	_, b := startWatcher(t, dir, tsOptions)

	require.NoError(t, os.WriteFile(filepath.Join(nm, "index.ts"), []byte("x"), 0o644))
	b.none(t, 5*testDebounce)
}

func TestShouldProcessEvent(t *testing.T) {
	t.Parallel()

	fw := &fileWatcher{extensions: toSet(tsOptions.Extensions), fileNames: toSet(tsOptions.FileNames)}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write ts", fsnotify.Event{Name: "/p/a.ts", Op: fsnotify.Write}, true},
		{"create tsx", fsnotify.Event{Name: "/p/a.tsx", Op: fsnotify.Create}, true},
		{"remove ts", fsnotify.Event{Name: "/p/a.ts", Op: fsnotify.Remove}, true},
		{"rename ts", fsnotify.Event{Name: "/p/a.ts", Op: fsnotify.Rename}, true},
		{"chmod ts", fsnotify.Event{Name: "/p/a.ts", Op: fsnotify.Chmod}, false},
		{"javascript", fsnotify.Event{Name: "/p/a.js", Op: fsnotify.Write}, false},
		{"declaration file", fsnotify.Event{Name: "/p/a.d.ts", Op: fsnotify.Write}, false},
		{"tsconfig", fsnotify.Event{Name: "/p/tsconfig.json", Op: fsnotify.Write}, true},
		{"other json", fsnotify.Event{Name: "/p/data.json", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fw.shouldProcessEvent(tt.event))
		})
	}
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, b := startWatcher(t, dir, tsOptions)

	w.Pause()
	file := filepath.Join(dir, "paused.ts")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	b.none(t, 5*testDebounce)

	w.Resume()
	assert.Equal(t, []string{file}, b.wait(t))
}

func TestFileWatcher_DefaultDebounce(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{Extensions: []string{".ts"}})
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, DefaultDebounce, w.(*fileWatcher).debounceTime)
}

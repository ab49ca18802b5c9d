package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexjbarnes/outline-sync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, debounce time.Duration, dirs ...string) *Watcher {
	t.Helper()

	w := NewWatcher(logging.Discard(), debounce)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = w.Watch(ctx, dirs...)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register the directories.
	time.Sleep(100 * time.Millisecond)

	return w
}

func waitSignal(t *testing.T, w *Watcher, within time.Duration) bool {
	t.Helper()

	select {
	case <-w.Changes():
		return true
	case <-time.After(within):
		return false
	}
}

func TestWatcher_SignalsOnceForBurst(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, 150*time.Millisecond, dir)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.doc"), []byte{byte(i)}, 0o644))
	}

	assert.True(t, waitSignal(t, w, 3*time.Second))
	assert.False(t, waitSignal(t, w, 400*time.Millisecond), "burst must collapse into one signal")
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, 50*time.Millisecond, dir)

	sub := filepath.Join(dir, "a__")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.True(t, waitSignal(t, w, 3*time.Second))

	// Let the watcher pick up the new directory before writing into it.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.doc"), []byte("x"), 0o644))
	assert.True(t, waitSignal(t, w, 3*time.Second))
}

func TestWatcher_TrashRenameIsAChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.doc"), []byte("x"), 0o644))

	w := startWatcher(t, 50*time.Millisecond, dir)

	require.NoError(t, os.Rename(filepath.Join(dir, "a.doc"), filepath.Join(dir, ".deleted_a.doc")))
	assert.True(t, waitSignal(t, w, 3*time.Second))
}

func TestWatcher_IgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, 50*time.Millisecond, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".outline-sync-tmp-123"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.doc~"), []byte("x"), 0o644))

	assert.False(t, waitSignal(t, w, 400*time.Millisecond))
}

func TestWatcher_MissingDirectoryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, 50*time.Millisecond, filepath.Join(dir, "missing"), dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.doc"), []byte("x"), 0o644))
	assert.True(t, waitSignal(t, w, 3*time.Second))
}

func TestShouldIgnore(t *testing.T) {
	assert.True(t, shouldIgnore("/x/.outline-sync-tmp-abc"))
	assert.True(t, shouldIgnore("/x/a.doc.swp"))
	assert.True(t, shouldIgnore("/x/a.doc~"))
	assert.False(t, shouldIgnore("/x/.deleted_a.doc"))
	assert.False(t, shouldIgnore("/x/a__"))
}

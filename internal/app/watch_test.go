package app

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_MissingFile(t *testing.T) {
	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope"), time.Millisecond)
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_DetectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pcbnet")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	w, err := NewFileWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)

	changed := make(chan struct{}, 1)
	w.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x"}`), 0644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("change not detected")
	}
}

func TestFileWatcher_DebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pcbnet")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	w, err := NewFileWatcher(path, 200*time.Millisecond)
	require.NoError(t, err)

	var calls atomic.Int32
	w.OnChange(func() { calls.Add(1) })

	// Events are fed directly so the test does not depend on how the
	// platform coalesces writes.
	for i := 0; i < 5; i++ {
		w.handleChange()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	w.Stop()
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.pcbnet")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	w, err := NewFileWatcher(path, time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.relevant(fsnotify.Event{Name: w.Path(), Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: w.Path(), Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: w.Path(), Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(w.Path()+".bak"), Op: fsnotify.Write}))
}

package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher calls back when a file is written or replaced. Bursts of
// events within the debounce window produce a single callback. It is used to
// re-run a rebuild when the project file is saved by another tool.
type FileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	onChange func() // Called from a timer goroutine
	stopCh   chan struct{}
}

// NewFileWatcher creates a watcher for path. The parent directory is
// watched so editors that save by rename are still seen.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	// Resolve symlinks so the event names match the real file
	if realPath, err := filepath.EvalSymlinks(path); err == nil {
		path = realPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", absPath, err)
	}

	return &FileWatcher{
		path:     absPath,
		watcher:  w,
		debounce: debounce,
		stopCh:   make(chan struct{}),
	}, nil
}

// OnChange sets the callback invoked after each detected modification.
func (w *FileWatcher) OnChange(callback func()) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Start begins handling events in a background goroutine.
func (w *FileWatcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher. Pending callbacks are dropped.
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	close(w.stopCh)
	w.watcher.Close()
}

func (w *FileWatcher) watchLoop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.handleChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watch: %v", err)
		}
	}
}

// relevant reports whether event is a write or create of the watched file.
func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// handleChange restarts the debounce timer.
func (w *FileWatcher) handleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		cb := w.onChange
		w.mu.Unlock()
		select {
		case <-w.stopCh:
			return
		default:
		}
		if cb != nil {
			cb()
		}
	})
}

// Path returns the watched file.
func (w *FileWatcher) Path() string {
	return w.path
}

package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/untoldecay/flowai/internal/debug"
)

// Watcher notifies when a snapshot file is changed by another process,
// so long-running commands can reload. Uses filesystem events with a
// polling fallback (FLOW_WATCHER_FALLBACK=false disables the fallback).
type Watcher struct {
	watcher      *fsnotify.Watcher
	debouncer    *debouncer
	path         string
	parentDir    string
	pollingMode  bool
	pollInterval time.Duration
	lastModTime  time.Time
	lastExists   bool
	lastSize     int64
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewWatcher creates a watcher for the snapshot at path. onChanged fires
// after debouncing, from a background goroutine.
func NewWatcher(path string, onChanged func()) (*Watcher, error) {
	w := &Watcher{
		path:         path,
		parentDir:    filepath.Dir(path),
		debouncer:    newDebouncer(500*time.Millisecond, onChanged),
		pollInterval: 5 * time.Second,
	}

	if stat, err := os.Stat(path); err == nil {
		w.lastModTime = stat.ModTime()
		w.lastExists = true
		w.lastSize = stat.Size()
	}

	fallbackEnv := os.Getenv("FLOW_WATCHER_FALLBACK")
	fallbackDisabled := fallbackEnv == "false" || fallbackEnv == "0"

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		if fallbackDisabled {
			return nil, fmt.Errorf("fsnotify.NewWatcher() failed and FLOW_WATCHER_FALLBACK is disabled: %w", err)
		}
		debug.Logf("fsnotify unavailable (%v), using polling mode (%v interval)\n", err, w.pollInterval)
		w.pollingMode = true
		return w, nil
	}
	w.watcher = fsw

	// Watch the parent directory: snapshot saves rename a temp file into
	// place, which arrives as a Create on the directory.
	if err := fsw.Add(w.parentDir); err != nil {
		_ = fsw.Close()
		if fallbackDisabled {
			return nil, fmt.Errorf("failed to watch %s and FLOW_WATCHER_FALLBACK is disabled: %w", w.parentDir, err)
		}
		debug.Logf("failed to watch %s (%v), using polling mode\n", w.parentDir, err)
		w.pollingMode = true
		w.watcher = nil
		return w, nil
	}

	return w, nil
}

// Start begins monitoring. Runs until the context is canceled or Close is
// called. Call at most once per Watcher.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if w.pollingMode {
		w.startPolling(ctx)
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Name != w.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod) != 0 {
					debug.Logf("snapshot change detected: %s\n", event.Name)
					w.debouncer.trigger()
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				debug.Logf("watcher error: %v\n", err)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) startPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stat, err := os.Stat(w.path)
				if err != nil {
					if os.IsNotExist(err) && w.lastExists {
						w.lastExists = false
						w.lastModTime = time.Time{}
						w.lastSize = 0
						w.debouncer.trigger()
					}
					continue
				}
				if !w.lastExists || !stat.ModTime().Equal(w.lastModTime) || stat.Size() != w.lastSize {
					w.lastExists = true
					w.lastModTime = stat.ModTime()
					w.lastSize = stat.Size()
					w.debouncer.trigger()
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.debouncer.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// debouncer coalesces bursts of triggers into one callback.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

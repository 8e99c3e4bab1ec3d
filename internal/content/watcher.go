package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher signals when the content directory changes. Bursts of file events
// are coalesced into one signal.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher

	reloadCh  chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches dir and dir/posts. Call Start in a goroutine.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		dir:      dir,
		watcher:  fw,
		reloadCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, d := range []string{dir, filepath.Join(dir, PostsDirName)} {
		if _, err := os.Stat(d); err != nil {
			continue
		}
		if err := fw.Add(d); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Reloads delivers one value per debounced burst of changes.
func (w *Watcher) Reloads() <-chan struct{} {
	return w.reloadCh
}

// Start processes file events until Close is called.
func (w *Watcher) Start() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 && filepath.Base(event.Name) == PostsDirName {
				if err := w.watcher.Add(event.Name); err != nil {
					contentLog.Warn("watch_add_failed",
						slog.String("dir", event.Name),
						slog.String("error", err.Error()))
				}
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			contentLog.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	switch filepath.Ext(event.Name) {
	case ".md", ".toml":
		return true
	}
	return filepath.Base(event.Name) == PostsDirName
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, func() {
		select {
		case w.reloadCh <- struct{}{}:
		default:
		}
	})
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

// Package watch reloads a model file when it changes on disk. The parent
// directory is watched rather than the file itself, so editors that save
// by renaming a temporary file over the target still trigger a reload.
// Bursts of events are debounced into a single callback.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches one file and invokes a callback after it changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   string
	debounce time.Duration
	onChange func(path string)
	logger   *zap.Logger
	done     chan struct{}

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// New starts watching path. The callback runs on a timer goroutine after
// the file has been quiet for the debounce interval.
func New(path string, debounce time.Duration, onChange func(string), logger *zap.Logger) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watch: nil callback")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsw:      fsw,
		target:   abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.loop()

	logger.Debug("watching file",
		zap.String("path", abs),
		zap.Duration("debounce", debounce))
	return w, nil
}

// Target returns the absolute path being watched.
func (w *Watcher) Target() string {
	return w.target
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.bump()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// bump restarts the debounce timer. Only the last event of a burst fires
// the callback.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Debug("file changed", zap.String("path", w.target))
		w.onChange(w.target)
	})
}

// Close stops watching and cancels any pending callback. It blocks until
// the event loop has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

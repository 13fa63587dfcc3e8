package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/docsite/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before reloading.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes to Markdown files in local docs directories.
// Bursts of events are debounced into one onChange call; calls never overlap.
type Watcher struct {
	dirs     []string
	watcher  *fsnotify.Watcher
	onChange func(context.Context) error
	debounce time.Duration
	logger   *slog.Logger

	reloadChan chan struct{}
	stopChan   chan struct{}
	stopOnce   sync.Once
	changeMu   sync.Mutex
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before onChange runs.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for watch events.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher over dirs calling onChange after changes.
func NewWatcher(dirs []string, onChange func(context.Context) error, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	abs := make([]string, 0, len(dirs))
	for _, d := range dirs {
		a, err := filepath.Abs(d)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("resolving docs directory: %w", err)
		}
		abs = append(abs, a)
	}

	w := &Watcher{
		dirs:       abs,
		watcher:    fw,
		onChange:   onChange,
		debounce:   DefaultDebounce,
		logger:     logfields.Discard(),
		reloadChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches the directories until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, d := range w.dirs {
		if err := w.watcher.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}

	w.logger.Info("watching docs", logfields.Count(len(w.dirs)))

	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != markdownExt {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("doc change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			w.triggerReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("docs watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-w.stopChan:
			stop()
			return
		case <-w.reloadChan:
			stop()
			timer = time.AfterFunc(w.debounce, func() { w.fire(ctx) })
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	w.changeMu.Lock()
	defer w.changeMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.onChange(ctx); err != nil {
		w.logger.Error("reloading docs", logfields.Error(err))
	}
}

// triggerReload requests a debounced reload without blocking.
func (w *Watcher) triggerReload() {
	select {
	case w.reloadChan <- struct{}{}:
	default:
	}
}

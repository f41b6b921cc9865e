package routefile

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/waymark/pkg/route"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a route table whenever its routes file changes.
// A file that fails to load or compile leaves the current table in place.
type Watcher struct {
	watcher   *fsnotify.Watcher
	table     *route.Table
	cache     *route.Cache
	logger    *slog.Logger
	onError   func(error)
	onReload  func([]*route.Route)
	stopCh    chan struct{}
	stoppedCh chan struct{}
	path      string
	debounce  time.Duration
	mu        sync.Mutex
	running   bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long to wait after the last write before reloading.
// Default: 100ms.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithCache compiles reloaded routes through c.
func WithCache(c *route.Cache) WatcherOption {
	return func(w *Watcher) {
		w.cache = c
	}
}

// OnError registers a callback for failed reloads.
func OnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// OnReload registers a callback invoked with the new routes after each successful reload.
func OnReload(fn func([]*route.Route)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a watcher that keeps table in sync with path.
func NewWatcher(path string, table *route.Table, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:   fsw,
		table:     table,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		path:      absPath,
		debounce:  defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start loads the file once and then watches it until ctx is done or Stop is called.
// The initial load must succeed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.load(); err != nil {
		return err
	}

	// Editors often replace the file rather than write it, so watch the directory.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.running = true
	w.logger.Info("watching routes file", slog.String("path", w.path))

	go w.watch(ctx)
	return nil
}

// Stop ends the watch loop and releases the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh
	return w.watcher.Close()
}

// Shutdown adapts Stop to a shutdown hook.
func (w *Watcher) Shutdown() func(context.Context) error {
	return func(context.Context) error {
		return w.Stop()
	}
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stoppedCh)

	var (
		timer    *time.Timer
		reloadCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			reloadCh = timer.C

		case <-reloadCh:
			reloadCh = nil
			if err := w.load(); err != nil {
				w.logger.Error("routes reload failed", slog.String("path", w.path), slog.Any("error", err))
				if w.onError != nil {
					w.onError(err)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("routes watcher error", slog.Any("error", err))
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) load() error {
	defs, err := Load(w.path)
	if err != nil {
		return err
	}

	routes, err := Build(defs, w.cache)
	if err != nil {
		return err
	}

	w.table.Replace(routes)
	w.logger.Info("routes loaded", slog.String("path", w.path), slog.Int("count", len(routes)))

	if w.onReload != nil {
		w.onReload(routes)
	}
	return nil
}

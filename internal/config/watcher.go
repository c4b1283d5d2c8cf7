package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for edits to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the configuration when its file changes and publishes
// the result. Only the latest valid config is kept if the reader falls
// behind.
type Watcher struct {
	path     string
	reload   func() (*Config, error)
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	updates  chan *Config
}

// NewWatcher watches path; reload produces the new config after a change.
func NewWatcher(path string, debounce time.Duration, reload func() (*Config, error), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return &Watcher{
		path:     abs,
		reload:   reload,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger,
		updates:  make(chan *Config, 1),
	}, nil
}

// Updates delivers reloaded configs. It is closed when the watcher stops.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Start watches the file's directory, so editors that replace the file on
// save are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	go w.run(ctx)
	w.logger.Info("Config watcher started",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.updates)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", slog.String("error", err.Error()))

		case <-fire:
			fire = nil
			w.publish()
		}
	}
}

func (w *Watcher) publish() {
	cfg, err := w.reload()
	if err != nil {
		w.logger.Warn("Config reload rejected", slog.String("path", w.path), slog.String("error", err.Error()))
		return
	}
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
	w.logger.Info("Config reloaded", slog.String("path", w.path))
}

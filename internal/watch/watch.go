// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-runs an action when a contact input changes on disk.
//
// A file input is watched through its parent directory so that editors
// which replace the file by rename are still seen. A directory input
// reacts to changes of *.vcf entries directly inside it. Bursts of events
// are debounced into a single callback.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove

// Watcher watches one input path.
type Watcher struct {
	fs       *fsnotify.Watcher
	target   string
	dir      string
	isDir    bool
	debounce time.Duration
	log      *zap.Logger
}

// New creates a watcher for path. A debounce of zero selects
// DefaultDebounce.
func New(path string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	w := &Watcher{
		target:   target,
		dir:      target,
		isDir:    info.IsDir(),
		debounce: debounce,
		log:      log,
	}
	if !w.isDir {
		w.dir = filepath.Dir(target)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.fs = fsw
	return w, nil
}

// Close stops watching and releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run blocks until ctx is done or the watcher is closed, calling onChange
// after each debounced burst of relevant events. Callback errors are
// logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("input changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.log.Warn("re-import failed", zap.String("input", w.target), zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&relevantOps == 0 {
		return false
	}
	name := filepath.Clean(ev.Name)
	if !w.isDir {
		return name == w.target
	}
	return filepath.Dir(name) == w.dir && strings.EqualFold(filepath.Ext(name), ".vcf")
}

// Package watch re-runs a callback whenever a source file is saved.
//
// Design: Watch the parent directory rather than the file, so editors that
// save by rename-and-replace keep being noticed.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/GriffinCanCode/minic/pkg/logger"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 100 * time.Millisecond

type Watcher struct {
	w        *fsnotify.Watcher
	path     string
	debounce time.Duration
}

// New watches path. A debounce of zero uses DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	return &Watcher{w: w, path: abs, debounce: debounce}, nil
}

// Path returns the absolute path being watched.
func (fw *Watcher) Path() string { return fw.path }

// Run calls onChange after each settled burst of changes to the file, until
// ctx is done or the watcher fails. It returns nil on cancellation.
func (fw *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	timer := time.NewTimer(fw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(ev) {
				continue
			}
			logger.Debug("Source changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(fw.debounce)

		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", fw.path, err)

		case <-timer.C:
			onChange(fw.path)
		}
	}
}

func (fw *Watcher) Close() error {
	return fw.w.Close()
}

func (fw *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != fw.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of writes into one refresh.
const watchDebounce = 100 * time.Millisecond

// dbWatcher calls onChange when the watched database file, or one of its
// journal or WAL files, changes on disk.
type dbWatcher struct {
	w        *fsnotify.Watcher
	logger   *slog.Logger
	onChange func()

	mu   sync.Mutex
	path string
	dir  string
}

func newDBWatcher(logger *slog.Logger, onChange func()) (*dbWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &dbWatcher{w: w, logger: logger, onChange: onChange}, nil
}

// Watch switches to path. The containing directory is watched since
// engines replace and create sibling files.
func (d *dbWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	d.mu.Lock()
	defer d.mu.Unlock()
	if dir != d.dir {
		if d.dir != "" {
			_ = d.w.Remove(d.dir)
		}
		if err := d.w.Add(dir); err != nil {
			return err
		}
		d.dir = dir
	}
	d.path = abs
	return nil
}

// matches reports whether name belongs to the watched database.
func (d *dbWatcher) matches(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.path == "" {
		return false
	}
	return name == d.path ||
		strings.HasPrefix(name, d.path+"-") || // sqlite -wal, -journal
		strings.HasPrefix(name, d.path+".") // duckdb .wal
}

// Run processes events until ctx is done, then closes the watcher.
func (d *dbWatcher) Run(ctx context.Context) error {
	defer func() { _ = d.w.Close() }()

	// Debounce timer
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-d.w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !d.matches(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				d.logger.Debug("database changed, refreshing completion", "file", event.Name)
				d.onChange()
			})

		case err, ok := <-d.w.Errors:
			if !ok {
				return nil
			}
			d.logger.Error("watcher error", "error", err)
		}
	}
}

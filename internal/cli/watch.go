package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// debounce merges the events of a single save. Editors often truncate and
// write, or write a temporary file and rename it.
const debounce = 100 * time.Millisecond

// fileWatcher reports changes of a single file. It watches the parent
// directory, so files replaced by a rename are still seen.
type fileWatcher struct {
	w      *fsnotify.Watcher
	path   string
	logger *log.Logger
}

func newFileWatcher(path string, logger *log.Logger) (*fileWatcher, error) {
	if path == "" {
		return nil, errors.New("watch: no schema file")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return &fileWatcher{w: w, path: abs, logger: logger}, nil
}

// run calls fn after every change of the file until ctx is done. Errors of
// fn are logged and do not stop the watcher.
func (fw *fileWatcher) run(ctx context.Context, fn func() error) error {
	defer fw.w.Close()
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != fw.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			fw.logger.Debug("file changed", "path", ev.Name, "op", ev.Op)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := fn(); err != nil {
				fw.logger.Error("update failed", "err", err)
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", "err", err)
		}
	}
}

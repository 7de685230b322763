package credentials

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watch observes the credentials file and calls onChange after it has been
// created, written or replaced, until ctx is cancelled. Bursts of events
// (editors, atomic renames) collapse into a single call.
//
// The parent directory is watched rather than the file itself so that
// rename-based writes are still seen.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("credentials watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("credentials watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			logger.Debug("credentials watcher: change detected", slog.String("path", abs))
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("credentials watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the mirror whenever the data file is changed by someone
// else, such as an operator editing it by hand. Bursts of events are
// collapsed into one reload. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watching the directory survives the data file being replaced by rename.
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Base(s.path)
	settle := time.NewTimer(reloadSettle)
	settle.Stop()

	s.log.Info().Msg("watching product file for external changes")
	for {
		select {
		case <-ctx.Done():
			settle.Stop()
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			settle.Reset(reloadSettle)

		case <-settle.C:
			if err := s.Reload(ctx); err != nil {
				s.log.Warn().Err(err).Msg("reload after file change failed, keeping previous products")
				continue
			}
			s.log.Debug().Msg("products reloaded from disk")

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

package workspace

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchResults watches the results directory and broadcasts an event for
// every run record written or changed, so connected viewers refresh while
// a batch run is in progress. Blocks until ctx is done.
func (s *Service) WatchResults(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.Config.ResultsDir); err != nil {
		return err
	}
	slog.Info("watching results directory", "dir", s.Config.ResultsDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, runSuffix) {
				continue
			}
			s.Hub.Broadcast(Event{
				Type:   "run_updated",
				CaseID: strings.TrimSuffix(name, runSuffix),
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("results watcher error", "error", err)
		}
	}
}

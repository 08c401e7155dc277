package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const defaultDropDebounce = 500 * time.Millisecond

// dropWatcher turns files landing in a folder into drops
type dropWatcher struct {
	dir      string
	debounce time.Duration
}

func newDropWatcher(dir string) *dropWatcher {
	return &dropWatcher{
		dir:      dir,
		debounce: defaultDropDebounce,
	}
}

// Run watches the folder until ctx is done. Files created or written within
// one debounce window are delivered together, in arrival order, as a single
// pathsDroppedMsg.
func (w *dropWatcher) Run(ctx context.Context, send func(tea.Msg)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	slog.Info("drop_watch_started", "dir", w.dir)

	var (
		mu            sync.Mutex
		pending       []string
		seen          = make(map[string]bool)
		debounceTimer *time.Timer
	)

	flush := func() {
		mu.Lock()
		paths := pending
		pending = nil
		seen = make(map[string]bool)
		mu.Unlock()

		if len(paths) == 0 || ctx.Err() != nil {
			return
		}
		slog.Info("drop_detected", "dir", w.dir, "files", len(paths))
		send(pathsDroppedMsg{paths: paths, source: "watch"})
	}

	// Event loop
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if ignoredDropName(event.Name) {
				continue
			}

			mu.Lock()
			if !seen[event.Name] {
				seen[event.Name] = true
				pending = append(pending, event.Name)
			}
			mu.Unlock()

			// Reset debounce timer
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, flush)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("drop_watch_error", "dir", w.dir, "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			slog.Info("drop_watch_stopped", "dir", w.dir)
			return nil
		}
	}
}

// ignoredDropName filters hidden files and partial downloads
func ignoredDropName(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".tmp", ".part", ".crdownload", ".download", ".swp":
		return true
	}
	return false
}

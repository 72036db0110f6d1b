package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultWatchDebounce coalesces editor save bursts into one reload.
const defaultWatchDebounce = 250 * time.Millisecond

// Watch calls onChange after path is written, created, or replaced, until ctx is done. The parent
// directory is watched so atomic-rename saves are observed. onErr receives watcher errors and may
// be nil.
func Watch(ctx context.Context, path string, onChange func(), onErr func(error)) error {
	return watch(ctx, path, defaultWatchDebounce, onChange, onErr)
}

// watch is Watch with an explicit debounce window.
func watch(ctx context.Context, path string, debounce time.Duration, onChange func(), onErr func(error)) error {
	if onChange == nil {
		return fmt.Errorf("watch config: onChange is required")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if err := EnsureConfigDir(target); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onErr != nil {
				onErr(err)
			}
		case <-timer.C:
			onChange()
		}
	}
}

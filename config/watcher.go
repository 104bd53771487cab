package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors a config file and invokes onChange with the freshly
// loaded configuration after each write. Reload failures are logged and
// the previous configuration stays in effect. Blocks until ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	// Editors often emit a burst of events per save; debounce them.
	var pending *time.Timer
	reload := func() {
		cfg, err := LoadFromFile(path)
		if err != nil {
			logger.Warn("Config reload failed, keeping previous", "path", path, "error", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Warn("Reloaded config invalid, keeping previous", "path", path, "error", err)
			return
		}
		logger.Info("Config reloaded", "path", path)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(250*time.Millisecond, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error", "error", err)
		}
	}
}

package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads configuration from configDir whenever anna.yaml changes on
// disk, invoking onReload with the freshly validated Config. It runs until
// ctx is cancelled or the watcher errors unrecoverably. A failed reload
// (parse or validation error) is logged and the previous configuration
// keeps serving — a live-reload failure must never take the daemon down.
func Watch(ctx context.Context, configDir string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(configDir); err != nil {
		return err
	}

	target := filepath.Join(configDir, "anna.yaml")
	log := slog.With("config_dir", configDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			cfg, err := Initialize(ctx, configDir)
			if err != nil {
				log.Warn("config reload failed, keeping previous configuration", "error", err)
				continue
			}
			log.Info("configuration reloaded")
			onReload(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "error", err)
		}
	}
}

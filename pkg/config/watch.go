package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordrank/internal/logger"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events a single save produces.
const reloadDebounce = 100 * time.Millisecond

// Watch reloads configPath whenever it is written, created or renamed into place and
// passes each config that loads and validates to onChange. A file that fails to load is
// logged and the previous config stays in effect.
//
// The parent directory is watched rather than the file so editors that replace the file
// on save keep triggering reloads. Watch blocks until ctx is done and then returns nil.
func Watch(ctx context.Context, configPath string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	log := logger.New("config")
	target := filepath.Clean(configPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	log.Debugf("Watching config file %s", target)

	timer := time.NewTimer(reloadDebounce)
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
			timer.Reset(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Config watcher error: %v", err)

		case <-timer.C:
			if !utils.FileExists(target) {
				continue
			}
			cfg, err := LoadConfig(target)
			if err != nil {
				log.Warnf("Keeping previous config, reload of %s failed: %v", target, err)
				continue
			}
			log.Infof("Reloaded config from %s", target)
			onChange(cfg)
		}
	}
}

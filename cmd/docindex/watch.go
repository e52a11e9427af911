package main

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docindex/internal/config"
)

// rebuildDebounce coalesces editor save bursts into one rebuild.
const rebuildDebounce = 300 * time.Millisecond

// watchAndRebuild reruns the build whenever a markdown source changes, until
// the context is canceled.
func watchAndRebuild(ctx context.Context, runOnce func(context.Context) error) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := addRecursive(watcher, cfg.Source.Directory); err != nil {
		return err
	}

	slog.Info("Watching for changes", "path", cfg.Source.Directory)

	var timer *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantChange(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				// new subdirectories need their own watch
				_ = addRecursive(watcher, event.Name)
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(rebuildDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		case <-rebuild:
			slog.Info("Source changed, rebuilding")
			if err := runOnce(ctx); err != nil {
				slog.Error("Rebuild failed", "error", err)
			}
		}
	}
}

func relevantChange(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".md") || !strings.Contains(base, ".")
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // path may have vanished mid-walk
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

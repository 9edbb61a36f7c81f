// Package watch re-runs synchronization whenever a staging folder changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sjhan/stagesync/internal/config"
	"github.com/sjhan/stagesync/internal/layout"
)

// debounceDelay coalesces editor save bursts into a single sync run.
const debounceDelay = 2 * time.Second

// Watcher observes the stage folders and triggers a debounced sync callback
// on every relevant filesystem event.
type Watcher struct {
	cfg      *config.Config
	logger   *slog.Logger
	debounce *debouncer
	runner   *runner
}

// New creates a watcher that invokes syncFn after changes settle.
func New(cfg *config.Config, logger *slog.Logger, syncFn func(context.Context)) *Watcher {
	return &Watcher{
		cfg:    cfg,
		logger: logger,
		debounce: &debouncer{
			delay: debounceDelay,
		},
		runner: &runner{logger: logger, syncFn: syncFn},
	}
}

// Run performs one initial sync, then blocks watching the stage folders
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	// A debounce timer armed just before shutdown must not fire a sync
	// after Run has returned.
	defer w.debounce.stop()

	w.runner.sync(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	dirs, err := WatchDirs(w.cfg)
	if err != nil {
		return fmt.Errorf("failed to enumerate watch directories: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no stage folders exist under %s, nothing to watch", w.cfg.Root)
	}

	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.logger.Info("watching stage folders", "dirs", len(dirs), "debounce", debounceDelay)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopping watcher")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if layout.Excluded(filepath.Base(event.Name), w.cfg.Exclude) {
				continue
			}

			// New directories must be added explicitly; fsnotify watches
			// are not recursive.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fsw.Add(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}

			w.logger.Debug("filesystem event", "op", event.Op.String(), "path", event.Name)
			w.debounce.trigger(func() {
				w.runner.sync(ctx)
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// WatchDirs returns every directory to watch: each existing stage folder and
// all non-excluded directories below it.
func WatchDirs(cfg *config.Config) ([]string, error) {
	var dirs []string
	for _, stage := range cfg.Stages {
		stageDir := cfg.StageDir(stage)
		if _, err := os.Stat(stageDir); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		err := filepath.WalkDir(stageDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != stageDir && layout.Excluded(d.Name(), cfg.Exclude) {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sjhan/stagesync/internal/config"
	"github.com/sjhan/stagesync/internal/layout"
)

// Engine performs one synchronization of the staging folders into the
// flattened root layout.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger
	dryRun bool
}

// NewEngine creates a new sync engine
func NewEngine(cfg *config.Config, logger *slog.Logger, dryRun bool) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
		dryRun: dryRun,
	}
}

// Run walks every stage folder and area mapping in table order and copies
// changed files into the destination layout. Missing stage or area folders
// are skipped silently; the first unexpected filesystem error aborts the run
// with whatever was already copied left in place.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	e.logger.Info("starting sync",
		"root", e.cfg.Root,
		"stages", len(e.cfg.Stages),
		"areas", len(e.cfg.Areas),
		"dry_run", e.dryRun)

	var total Stats
	for _, stage := range e.cfg.Stages {
		stageDir := e.cfg.StageDir(stage)
		if _, err := os.Stat(stageDir); err != nil {
			if os.IsNotExist(err) {
				e.logger.Debug("stage folder not present, skipping", "stage", stage)
				continue
			}
			return total, fmt.Errorf("failed to stat stage folder %s: %w", stage, err)
		}

		for _, m := range e.cfg.Areas {
			if err := ctx.Err(); err != nil {
				return total, err
			}

			srcDir := e.cfg.AreaDir(stage, m)
			if _, err := os.Stat(srcDir); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return total, fmt.Errorf("failed to stat area folder %s/%s: %w", stage, m.Area, err)
			}

			e.logger.Debug("syncing area", "stage", stage, "area", m.Area, "dest", m.Dest)
			stats, err := e.copyTree(srcDir, e.cfg.DestDir(m))
			total = total.Add(stats)
			if err != nil {
				return total, fmt.Errorf("failed to sync %s/%s: %w", stage, m.Area, err)
			}
		}
	}

	e.logger.Info("sync finished", "copied", total.Copied, "skipped", total.Skipped)
	return total, nil
}

// copyTree recursively copies src onto dst, returning the copy/skip counts
// for the subtree.
func (e *Engine) copyTree(src, dst string) (Stats, error) {
	// Lstat: symlinks are treated as "neither file nor directory" and
	// skipped instead of being followed.
	info, err := os.Lstat(src)
	if err != nil {
		if os.IsNotExist(err) {
			// Source vanished between the caller's existence check and now.
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("failed to stat %s: %w", src, err)
	}

	switch {
	case info.IsDir():
		return e.copyDir(src, dst)
	case info.Mode().IsRegular():
		return e.copyFile(src, dst, info)
	default:
		// Symlinks, sockets and other special entries are not synced.
		e.logger.Debug("ignoring special entry", "path", e.rel(src))
		return Stats{}, nil
	}
}

func (e *Engine) copyDir(src, dst string) (Stats, error) {
	if !e.dryRun {
		if err := os.MkdirAll(dst, 0755); err != nil {
			return Stats{}, fmt.Errorf("failed to create directory %s: %w", e.rel(dst), err)
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read directory %s: %w", e.rel(src), err)
	}

	var total Stats
	for _, entry := range entries {
		if layout.Excluded(entry.Name(), e.cfg.Exclude) {
			continue
		}

		stats, err := e.copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()))
		total = total.Add(stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (e *Engine) copyFile(src, dst string, srcInfo os.FileInfo) (Stats, error) {
	dstInfo, err := os.Stat(dst)
	switch {
	case err == nil:
		// Copy only when the source is strictly newer than the destination.
		if !srcInfo.ModTime().After(dstInfo.ModTime()) {
			return Stats{Skipped: 1}, nil
		}
	case !os.IsNotExist(err):
		return Stats{}, fmt.Errorf("failed to stat %s: %w", e.rel(dst), err)
	}

	if e.dryRun {
		e.logger.Info("would copy file", "source", e.rel(src), "dest", e.rel(dst))
		return Stats{Copied: 1}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return Stats{}, fmt.Errorf("failed to create directory %s: %w", e.rel(filepath.Dir(dst)), err)
	}

	e.logger.Info("copying file", "source", e.rel(src), "dest", e.rel(dst))
	vanished, err := copyContents(src, dst)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to copy %s: %w", e.rel(src), err)
	}
	if vanished {
		// Source disappeared mid-copy; treat like the missing-source no-op.
		return Stats{}, nil
	}
	return Stats{Copied: 1}, nil
}

// copyContents copies a file byte-for-byte with an atomic write. The
// destination mtime is whatever the write produces; the source mtime is
// deliberately not preserved. Returns vanished=true when the source no
// longer exists.
func copyContents(src, dst string) (vanished bool, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	// Write to a temp file in the destination directory, then rename, so a
	// killed run never leaves a half-written destination file.
	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".stagesync-tmp-*")
	if err != nil {
		return false, err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := io.Copy(tmpFile, srcFile); err != nil {
		_ = tmpFile.Close()
		return false, err
	}

	srcInfo, err := srcFile.Stat()
	if err != nil {
		_ = tmpFile.Close()
		return false, err
	}

	if err := tmpFile.Chmod(srcInfo.Mode()); err != nil {
		_ = tmpFile.Close()
		return false, err
	}

	if err := tmpFile.Close(); err != nil {
		return false, err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return false, err
	}

	return false, nil
}

// rel shortens an absolute path to a root-relative one for log output.
func (e *Engine) rel(path string) string {
	rel, err := filepath.Rel(e.cfg.Root, path)
	if err != nil {
		return path
	}
	return rel
}

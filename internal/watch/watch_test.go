package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjhan/stagesync/internal/config"
	"github.com/sjhan/stagesync/internal/layout"
)

func watchConfig(root string) *config.Config {
	return &config.Config{
		Root:   root,
		Stages: []string{"S2_개발-1차", "S3_개발-2차"},
		Areas:  []layout.AreaMapping{{Area: "Frontend", Dest: "pages"}},
	}
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		"S2_개발-1차/Frontend/assets",
		"S2_개발-1차/Frontend/node_modules/pkg",
		"S2_개발-1차/.git/objects",
		"S3_개발-2차/Backend",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0755))
	}

	dirs, err := WatchDirs(watchConfig(root))
	require.NoError(t, err)

	rel := make([]string, 0, len(dirs))
	for _, d := range dirs {
		r, err := filepath.Rel(root, d)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}

	assert.ElementsMatch(t, []string{
		"S2_개발-1차",
		"S2_개발-1차/Frontend",
		"S2_개발-1차/Frontend/assets",
		"S3_개발-2차",
		"S3_개발-2차/Backend",
	}, rel)
}

func TestWatchDirs_MissingStagesSkipped(t *testing.T) {
	dirs, err := WatchDirs(watchConfig(t.TempDir()))
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestRun_FailsWithNothingToWatch(t *testing.T) {
	w := New(watchConfig(t.TempDir()), testLogger(), func(context.Context) {})

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to watch")
}

func TestRun_PerformsInitialSync(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "S2_개발-1차", "Frontend"), 0755))

	synced := make(chan struct{}, 1)
	w := New(watchConfig(root), testLogger(), func(context.Context) {
		select {
		case synced <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	<-synced
	cancel()
	require.NoError(t, <-done)
}

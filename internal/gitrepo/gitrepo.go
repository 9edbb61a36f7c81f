// Package gitrepo locates the git repository a directory belongs to.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindRoot returns the top-level directory of the git repository containing
// dir. It asks the git command first and falls back to walking up the tree
// looking for a .git entry, so it also works when git is not in PATH.
func FindRoot(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--show-toplevel")
	if out, err := cmd.Output(); err == nil {
		if root := strings.TrimSpace(string(out)); root != "" {
			return root, nil
		}
	}

	return walkUp(dir)
}

// walkUp climbs the directory tree from dir looking for a .git entry. A
// plain file named .git (worktrees, submodules) counts as well.
func walkUp(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no git repository found above %s", dir)
		}
		dir = parent
	}
}

// Package hook installs the git pre-commit hook that runs stagesync before
// every commit.
package hook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// marker identifies hooks written by us, so uninstall never deletes a hook
// someone else put in place.
const marker = "# installed by stagesync"

const hookTemplate = `#!/usr/bin/env bash
` + marker + `
# Keep the flattened root layout in sync with the staging folders, then
# stage the synced output so it is part of the commit.
set -e

if ! command -v stagesync >/dev/null 2>&1; then
    echo "stagesync not found in PATH, skipping sync"
    exit 0
fi

stagesync sync

# Destinations may not exist yet (fresh clone, nothing synced); a missing
# one must not block the commit.
for d in %s; do
    if [ -e "$d" ]; then
        git add "$d"
    fi
done
`

// Install writes the pre-commit hook into the repository rooted at root.
// dests are the root-relative destination directories the hook stages after
// syncing. An existing foreign hook is backed up first unless force is set.
// Returns the path of the written hook.
func Install(root string, dests []string, force bool) (string, error) {
	dir, err := hooksDir(root)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := filepath.Join(dir, "pre-commit")
	if existing, err := os.ReadFile(hookPath); err == nil && !force && !IsOurs(string(existing)) {
		backupPath := fmt.Sprintf("%s.backup-%s", hookPath, time.Now().Format("20060102-150405"))
		if err := os.WriteFile(backupPath, existing, 0755); err != nil {
			return "", fmt.Errorf("failed to back up existing hook: %w", err)
		}
	}

	content := fmt.Sprintf(hookTemplate, strings.Join(dests, " "))
	if err := os.WriteFile(hookPath, []byte(content), 0755); err != nil {
		return "", fmt.Errorf("failed to write hook file: %w", err)
	}

	return hookPath, nil
}

// Uninstall removes the pre-commit hook if it was installed by us. Removing
// a hook we did not write is an error; a missing hook is not.
func Uninstall(root string) error {
	dir, err := hooksDir(root)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(dir, "pre-commit")
	content, err := os.ReadFile(hookPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read hook file: %w", err)
	}

	if !IsOurs(string(content)) {
		return fmt.Errorf("pre-commit hook at %s was not installed by stagesync, refusing to remove it", hookPath)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("failed to remove hook file: %w", err)
	}
	return nil
}

// IsOurs reports whether hook content was written by stagesync.
func IsOurs(content string) bool {
	return strings.Contains(content, marker)
}

// hooksDir resolves the hooks directory for the repository at root,
// following a .git file indirection for worktrees and submodules.
func hooksDir(root string) (string, error) {
	gitPath := filepath.Join(root, ".git")

	info, err := os.Stat(gitPath)
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}

	if info.IsDir() {
		return filepath.Join(gitPath, "hooks"), nil
	}

	// Worktree or submodule: .git is a file containing "gitdir: <path>".
	content, err := os.ReadFile(gitPath)
	if err != nil {
		return "", fmt.Errorf("failed to read .git file: %w", err)
	}

	line := strings.TrimSpace(string(content))
	gitDir, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok {
		return "", fmt.Errorf("unrecognized .git file format at %s", gitPath)
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}

	return filepath.Join(gitDir, "hooks"), nil
}

// Package testutil provides filesystem fixtures for sync tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile writes content to root/rel, creating parent directories. The
// relative path uses forward slashes.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directories for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// Touch sets the modification time of a file. Skip decisions depend only on
// mtimes, so tests pin them explicitly instead of sleeping.
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()

	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime of %s: %v", path, err)
	}
}

// ReadFile returns the content of root/rel.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Exists reports whether root/rel exists.
func Exists(t *testing.T, root, rel string) bool {
	t.Helper()

	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("failed to stat %s: %v", rel, err)
	return false
}

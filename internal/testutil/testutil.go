// Package testutil provides helpers for building comparable directory
// trees under t.TempDir().
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Fixture holds a set of root directories to scan against each other.
type Fixture struct {
	T       *testing.T
	BaseDir string
	Roots   []string
}

// NewFixture creates one subdirectory per name under a fresh temp dir.
func NewFixture(t *testing.T, rootNames ...string) *Fixture {
	t.Helper()

	base := t.TempDir()
	f := &Fixture{T: t, BaseDir: base}

	for _, name := range rootNames {
		dir := filepath.Join(base, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create root %s: %v", dir, err)
		}
		f.Roots = append(f.Roots, dir)
	}

	return f
}

// WriteFile creates a file under the given root, creating intermediate
// directories, and returns its path.
func (f *Fixture) WriteFile(root, relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		f.T.Fatalf("failed to create directory for %s: %v", fullPath, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}
	return fullPath
}

// WriteFileWithModTime creates a file and backdates its modification
// time.
func (f *Fixture) WriteFileWithModTime(root, relPath string, content []byte, mtime time.Time) string {
	f.T.Helper()

	fullPath := f.WriteFile(root, relPath, content)
	if err := os.Chtimes(fullPath, mtime, mtime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}
	return fullPath
}

// MakeUnreadable strips all permissions from path and restores them on
// cleanup so TempDir removal still works.
func (f *Fixture) MakeUnreadable(path string) {
	f.T.Helper()

	info, err := os.Stat(path)
	if err != nil {
		f.T.Fatalf("failed to stat %s: %v", path, err)
	}
	if err := os.Chmod(path, 0000); err != nil {
		f.T.Fatalf("failed to chmod %s: %v", path, err)
	}
	f.T.Cleanup(func() {
		os.Chmod(path, info.Mode().Perm())
	})
}

// SkipIfRoot skips tests that rely on permission errors, which root
// never sees.
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("skipping test when running as root")
	}
}

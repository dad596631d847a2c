// Package trash moves user-confirmed files to a recoverable location
// instead of deleting them, and prunes in-memory duplicate groups after
// the move. This is a consumer of the detection engine's output; the
// engine itself never deletes anything.
package trash

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/razakaze/duplicate-finder/internal/analyzer"
)

// Dir returns the per-user trash directory, creating it if needed.
// macOS uses ~/.Trash; Linux uses the XDG trash files directory; anything
// else falls back to a dotted directory under the user's home.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, ".Trash")
	case "linux":
		dir = filepath.Join(home, ".local", "share", "Trash", "files")
	default:
		dir = filepath.Join(home, ".dupfinder-trash")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create trash directory: %w", err)
	}
	return dir, nil
}

// Move relocates path into trashDir and returns the destination. Name
// collisions get a numeric suffix. When the trash lives on a different
// filesystem the move degrades to copy-then-remove.
func Move(path, trashDir string) (string, error) {
	dst := uniqueDest(trashDir, filepath.Base(path))

	if err := os.Rename(path, dst); err == nil {
		return dst, nil
	}

	// Rename failed, likely a cross-device move. Copy then remove.
	if err := copyFile(path, dst); err != nil {
		return "", fmt.Errorf("failed to move %s to trash: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		// Keep the copy; the original could not be removed.
		return "", fmt.Errorf("failed to remove %s after copying to trash: %w", path, err)
	}
	return dst, nil
}

// MoveAll trashes every path, continuing past per-file failures. It
// returns the set of paths actually moved and the first error seen, if
// any.
func MoveAll(paths []string, trashDir string) (map[string]bool, error) {
	moved := make(map[string]bool, len(paths))
	var firstErr error
	for _, path := range paths {
		if _, err := Move(path, trashDir); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		moved[path] = true
	}
	return moved, firstErr
}

// Prune removes the given paths from every group's member list and drops
// groups left with fewer than two members; a one-member group is no
// longer a duplicate of anything.
func Prune(groups []*analyzer.DuplicateGroup, removed map[string]bool) []*analyzer.DuplicateGroup {
	kept := groups[:0]
	for _, g := range groups {
		files := g.Files[:0]
		for _, f := range g.Files {
			if !removed[f.Path] {
				files = append(files, f)
			}
		}
		g.Files = files
		if len(g.Files) >= 2 {
			kept = append(kept, g)
		}
	}
	return kept
}

// uniqueDest returns a destination path in dir that does not collide with
// an existing entry.
func uniqueDest(dir, name string) string {
	dst := filepath.Join(dir, name)
	for i := 1; ; i++ {
		if _, err := os.Lstat(dst); os.IsNotExist(err) {
			return dst
		}
		ext := filepath.Ext(name)
		base := name[:len(name)-len(ext)]
		dst = filepath.Join(dir, fmt.Sprintf("%s.%d%s", base, i, ext))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

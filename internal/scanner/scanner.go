// Package scanner walks directory trees and collects file metadata.
// It never reads file contents; hashing happens later, and only for
// files that are actually candidates for comparison.
package scanner

import (
	"io/fs"
	"path/filepath"
	"time"
)

// FileRecord represents one regular file found under a scanned root.
type FileRecord struct {
	Path    string    // absolute path
	Root    string    // canonicalized root this file was found under
	RelPath string    // path relative to Root
	Name    string    // base filename
	Size    int64     // size in bytes
	ModTime time.Time // last modification time
	Digest  string    // hex SHA-256; empty until hashed, or when unreadable
}

// progressInterval controls how often the progress callback fires.
// Batching keeps a polling observer from being flooded on large trees.
const progressInterval = 50

// CanonicalRoot resolves root to an absolute path with symlinks evaluated,
// so later equality comparisons between roots are reliable regardless of
// how the caller spelled the path.
func CanonicalRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Scan recursively walks root and returns a FileRecord for every regular
// file it can stat. Files and directories that fail to stat are skipped
// silently; they neither fail the scan nor appear in the output.
//
// onProgress, if non-nil, fires every 50 files and once more at the very
// end with the exact final count. isCancelled, if non-nil, is polled once
// per directory visited; when it reports true the walk stops and the
// records collected so far are returned.
func Scan(root string, onProgress func(count int), isCancelled func() bool) ([]*FileRecord, error) {
	resolved, err := CanonicalRoot(root)
	if err != nil {
		return nil, err
	}

	var records []*FileRecord
	count := 0

	filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission denied or transient I/O error: skip, keep walking.
			return nil
		}

		if d.IsDir() {
			if isCancelled != nil && isCancelled() {
				return fs.SkipAll
			}
			return nil
		}

		// Symlinks, sockets and devices are ignored. WalkDir does not
		// follow symlinks, so the same physical file is never counted
		// twice through a link.
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return nil
		}

		records = append(records, &FileRecord{
			Path:    path,
			Root:    resolved,
			RelPath: rel,
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})

		count++
		if onProgress != nil && count%progressInterval == 0 {
			onProgress(count)
		}
		return nil
	})

	// Final callback with the accurate total.
	if onProgress != nil {
		onProgress(len(records))
	}

	return records, nil
}

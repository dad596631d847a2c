// Package engine wires the scanner, hasher and analyzer into one
// cancellable pipeline run: scan every root, concatenate the records,
// classify, aggregate counters, hand back a ScanResult.
package engine

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/razakaze/duplicate-finder/internal/analyzer"
	"github.com/razakaze/duplicate-finder/internal/progress"
	"github.com/razakaze/duplicate-finder/internal/scanner"
)

// MinRoots and MaxRoots bound how many directory trees one run compares.
const (
	MinRoots = 2
	MaxRoots = 3
)

// Engine runs the full duplicate-detection pipeline over a fixed set of
// directory roots, writing progress into a shared tracker.
type Engine struct {
	roots   []string
	tracker *progress.Tracker
}

// New creates an engine for the given roots. The tracker may be shared
// with a polling observer; it must not be nil.
func New(roots []string, tracker *progress.Tracker) *Engine {
	return &Engine{roots: roots, tracker: tracker}
}

// ValidateRoots checks the root count and that every root resolves to an
// existing directory, returning the canonicalized list.
func ValidateRoots(roots []string) ([]string, error) {
	if len(roots) < MinRoots || len(roots) > MaxRoots {
		return nil, fmt.Errorf("need between %d and %d directories, got %d", MinRoots, MaxRoots, len(roots))
	}
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		r, err := scanner.CanonicalRoot(root)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve directory %s: %w", root, err)
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

// Run executes scan, hash and classify as one unit of work. It is shaped
// as a task.Func: a cancelled run returns (nil, nil), and only a failure
// of the pipeline itself (not a per-file error) returns a non-nil error.
func (e *Engine) Run(isCancelled func() bool) (*analyzer.ScanResult, error) {
	roots, err := ValidateRoots(e.roots)
	if err != nil {
		return nil, err
	}

	e.tracker.Reset()
	e.tracker.SetPhase(progress.PhaseScanning)
	e.tracker.SetIndeterminate(true)

	// Phase 1: metadata scan, one root at a time.
	var all []*scanner.FileRecord
	scanStart := time.Now()
	for i, root := range roots {
		if isCancelled() {
			return nil, nil
		}
		e.tracker.SetStatus(fmt.Sprintf("Scanning %s...", filepath.Base(root)))

		idx, r := i, root
		records, err := scanner.Scan(root, func(count int) {
			e.tracker.SetRootCount(idx, r, count)
		}, isCancelled)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
		all = append(all, records...)
	}
	scanDuration := time.Since(scanStart)

	if isCancelled() {
		return nil, nil
	}

	// Phase 2: hash candidates and classify.
	e.tracker.SetIndeterminate(false)
	e.tracker.SetFraction(0)
	e.tracker.SetPhase(progress.PhaseHashing)
	e.tracker.SetStatus(fmt.Sprintf("%d files found. Comparing candidates...", len(all)))

	hashStart := time.Now()
	binary, diverged := analyzer.FindDuplicates(all, func(done, total int) {
		if total > 0 {
			e.tracker.SetFraction(float64(done) / float64(total))
		}
		e.tracker.SetStatus(fmt.Sprintf("Comparing file %d of %d...", done, total))
	}, isCancelled)
	hashDuration := time.Since(hashStart)

	if isCancelled() {
		return nil, nil
	}

	// Aggregate the per-root counters now, while the full record list is
	// still in memory. Only grouped records survive past this point.
	filesPerRoot := make(map[string]int, len(roots))
	bytesPerRoot := make(map[string]int64, len(roots))
	for _, f := range all {
		filesPerRoot[f.Root]++
		bytesPerRoot[f.Root] += f.Size
	}
	totalFiles := len(all)

	e.tracker.SetFraction(1)
	e.tracker.SetPhase(progress.PhaseComplete)
	e.tracker.SetStatus(fmt.Sprintf("Done. %d files scanned, %d identical-copy groups, %d modified-version groups.",
		totalFiles, len(binary), len(diverged)))

	return &analyzer.ScanResult{
		Roots:            roots,
		BinaryDuplicates: binary,
		Diverged:         diverged,
		ScanDuration:     scanDuration,
		HashDuration:     hashDuration,
		TotalFiles:       totalFiles,
		FilesPerRoot:     filesPerRoot,
		BytesPerRoot:     bytesPerRoot,
	}, nil
}

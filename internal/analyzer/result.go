package analyzer

import "time"

// ScanResult is the output of one full scan run. It retains only the
// grouped records plus counters aggregated while the raw record list was
// still in memory; the unfiltered list itself is not kept, which bounds
// memory on large trees.
type ScanResult struct {
	Roots            []string
	BinaryDuplicates []*DuplicateGroup
	Diverged         []*DuplicateGroup
	ScanDuration     time.Duration
	HashDuration     time.Duration
	TotalFiles       int
	FilesPerRoot     map[string]int
	BytesPerRoot     map[string]int64
}

// ReclaimableBytes is the total space freed by keeping one copy of every
// binary duplicate.
func (r *ScanResult) ReclaimableBytes() int64 {
	var total int64
	for _, g := range r.BinaryDuplicates {
		total += g.WastedBytes()
	}
	return total
}

// DuplicateFileCount is the number of removable files across all binary
// duplicate groups (each group keeps one copy).
func (r *ScanResult) DuplicateFileCount() int {
	count := 0
	for _, g := range r.BinaryDuplicates {
		if len(g.Files) > 1 {
			count += len(g.Files) - 1
		}
	}
	return count
}

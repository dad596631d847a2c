// Package analyzer turns raw file metadata into duplicate and diverged
// groups using a two-pass name-then-hash classification.
package analyzer

import (
	"sort"
	"strings"

	"github.com/razakaze/duplicate-finder/internal/hasher"
	"github.com/razakaze/duplicate-finder/internal/scanner"
)

// MatchType classifies a group of same-named files.
type MatchType string

const (
	// BinaryDuplicate marks files with identical content found under two
	// or more distinct roots.
	BinaryDuplicate MatchType = "binary_duplicate"
	// Diverged marks a filename shared across roots whose copies are not
	// all byte-identical.
	Diverged MatchType = "diverged"
)

// DuplicateGroup is a set of records judged related.
type DuplicateGroup struct {
	Type       MatchType
	Files      []*scanner.FileRecord
	SharedName string // lowercase filename shared by every member
	Digest     string // set only for BinaryDuplicate groups
}

// WastedBytes is the space reclaimable by keeping a single copy. Diverged
// files are not safely removable, so their groups always report zero.
func (g *DuplicateGroup) WastedBytes() int64 {
	if g.Type == BinaryDuplicate && len(g.Files) > 0 {
		return g.Files[0].Size * int64(len(g.Files)-1)
	}
	return 0
}

// Newest returns the most recently modified member. Ties go to the
// earliest occurrence in the group.
func (g *DuplicateGroup) Newest() *scanner.FileRecord {
	if len(g.Files) == 0 {
		return nil
	}
	newest := g.Files[0]
	for _, f := range g.Files[1:] {
		if f.ModTime.After(newest.ModTime) {
			newest = f
		}
	}
	return newest
}

// Oldest returns the least recently modified member. Ties go to the
// earliest occurrence in the group.
func (g *DuplicateGroup) Oldest() *scanner.FileRecord {
	if len(g.Files) == 0 {
		return nil
	}
	oldest := g.Files[0]
	for _, f := range g.Files[1:] {
		if f.ModTime.Before(oldest.ModTime) {
			oldest = f
		}
	}
	return oldest
}

// FindDuplicates runs the two-pass classification over records from all
// scanned roots.
//
// Pass 1 groups records by lowercase filename and keeps only name-groups
// spanning two or more roots; everything else is never hashed. Pass 2
// hashes the survivors and classifies each name-group:
//
//   - every digest sub-group spanning 2+ roots becomes one
//     BinaryDuplicate group;
//   - a name-group with more than one distinct digest additionally
//     becomes one Diverged group holding all of its members, including
//     single-root members and members matching the majority digest.
//
// A name-group can therefore contribute to both outputs at once. If a
// cancellation lands between hashing and classification both result
// lists come back empty: classification is all-or-nothing per run.
func FindDuplicates(all []*scanner.FileRecord, onProgress func(done, total int), isCancelled func() bool) (binary, diverged []*DuplicateGroup) {
	byName := make(map[string][]*scanner.FileRecord)
	for _, f := range all {
		name := strings.ToLower(f.Name)
		byName[name] = append(byName[name], f)
	}

	// Cross-root filter. Sorting the surviving names makes hashing order
	// and group order deterministic run to run.
	var names []string
	for name, files := range byName {
		if rootCount(files) >= 2 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var toHash []*scanner.FileRecord
	for _, name := range names {
		toHash = append(toHash, byName[name]...)
	}

	hasher.HashAll(toHash, onProgress, isCancelled)

	if isCancelled != nil && isCancelled() {
		return nil, nil
	}

	for _, name := range names {
		files := byName[name]

		// Sub-group by digest, skipping unreadable members. Digest order
		// follows first occurrence so output order stays stable.
		byDigest := make(map[string][]*scanner.FileRecord)
		var digestOrder []string
		for _, f := range files {
			if f.Digest == "" {
				continue
			}
			if _, seen := byDigest[f.Digest]; !seen {
				digestOrder = append(digestOrder, f.Digest)
			}
			byDigest[f.Digest] = append(byDigest[f.Digest], f)
		}

		for _, digest := range digestOrder {
			sub := byDigest[digest]
			if rootCount(sub) >= 2 {
				binary = append(binary, &DuplicateGroup{
					Type:       BinaryDuplicate,
					Files:      sub,
					SharedName: name,
					Digest:     digest,
				})
			}
		}

		if len(digestOrder) > 1 {
			diverged = append(diverged, &DuplicateGroup{
				Type:       Diverged,
				Files:      files,
				SharedName: name,
			})
		}
	}

	return binary, diverged
}

// rootCount returns the number of distinct roots the records come from.
func rootCount(files []*scanner.FileRecord) int {
	roots := make(map[string]struct{}, len(files))
	for _, f := range files {
		roots[f.Root] = struct{}{}
	}
	return len(roots)
}

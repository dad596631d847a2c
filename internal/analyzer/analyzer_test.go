package analyzer

import (
	"sort"
	"testing"
	"time"

	"github.com/razakaze/duplicate-finder/internal/scanner"
	"github.com/razakaze/duplicate-finder/internal/testutil"
)

func scanAll(t *testing.T, roots ...string) []*scanner.FileRecord {
	t.Helper()
	var all []*scanner.FileRecord
	for _, root := range roots {
		records, err := scanner.Scan(root, nil, nil)
		if err != nil {
			t.Fatalf("Scan(%s) failed: %v", root, err)
		}
		all = append(all, records...)
	}
	return all
}

func TestBinaryDuplicateAndDivergedFromSameName(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b", "c")
	f.WriteFile(f.Roots[0], "doc.txt", []byte("original"))
	f.WriteFile(f.Roots[1], "doc.txt", []byte("original"))
	f.WriteFile(f.Roots[2], "doc.txt", []byte("edited version"))

	binary, diverged := FindDuplicates(scanAll(t, f.Roots...), nil, nil)

	if len(binary) != 1 {
		t.Fatalf("got %d binary groups, want 1", len(binary))
	}
	if len(binary[0].Files) != 2 {
		t.Errorf("binary group has %d members, want 2", len(binary[0].Files))
	}
	if binary[0].Digest == "" {
		t.Error("binary group missing shared digest")
	}
	if binary[0].SharedName != "doc.txt" {
		t.Errorf("SharedName = %q, want doc.txt", binary[0].SharedName)
	}
	if got := binary[0].WastedBytes(); got != int64(len("original")) {
		t.Errorf("WastedBytes = %d, want %d", got, len("original"))
	}

	// More than one distinct digest exists, so one diverged group holds
	// all three copies, including the two that match each other.
	if len(diverged) != 1 {
		t.Fatalf("got %d diverged groups, want 1", len(diverged))
	}
	if len(diverged[0].Files) != 3 {
		t.Errorf("diverged group has %d members, want all 3", len(diverged[0].Files))
	}
	if diverged[0].Digest != "" {
		t.Errorf("diverged group has digest %q, want none", diverged[0].Digest)
	}
	if got := diverged[0].WastedBytes(); got != 0 {
		t.Errorf("diverged WastedBytes = %d, want 0", got)
	}
}

func TestCaseInsensitiveNameMatching(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b")
	f.WriteFile(f.Roots[0], "File.TXT", []byte("same"))
	f.WriteFile(f.Roots[1], "file.txt", []byte("same"))

	binary, diverged := FindDuplicates(scanAll(t, f.Roots...), nil, nil)

	if len(binary) != 1 || len(binary[0].Files) != 2 {
		t.Fatalf("expected one binary group of 2, got %d groups", len(binary))
	}
	if binary[0].SharedName != "file.txt" {
		t.Errorf("SharedName = %q, want lowercase file.txt", binary[0].SharedName)
	}
	if len(diverged) != 0 {
		t.Errorf("got %d diverged groups, want 0", len(diverged))
	}
}

func TestSingleRootNamesNeverHashed(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b")
	f.WriteFile(f.Roots[0], "only-here.txt", []byte("one"))
	f.WriteFile(f.Roots[0], "sub/only-here.txt", []byte("two"))
	f.WriteFile(f.Roots[1], "unrelated.txt", []byte("three"))

	all := scanAll(t, f.Roots...)
	binary, diverged := FindDuplicates(all, nil, nil)

	if len(binary) != 0 || len(diverged) != 0 {
		t.Fatalf("got %d binary and %d diverged groups, want none", len(binary), len(diverged))
	}
	for _, rec := range all {
		if rec.Digest != "" {
			t.Errorf("%s was hashed despite never being a cross-root candidate", rec.Path)
		}
	}
}

func TestDivergedIncludesSingleRootMembers(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b")
	f.WriteFile(f.Roots[0], "notes.md", []byte("v1"))
	f.WriteFile(f.Roots[0], "archive/notes.md", []byte("v1"))
	f.WriteFile(f.Roots[1], "notes.md", []byte("v2"))

	binary, diverged := FindDuplicates(scanAll(t, f.Roots...), nil, nil)

	// The v1 digest pair lives entirely inside root a, so no binary group
	// spans two roots.
	if len(binary) != 0 {
		t.Fatalf("got %d binary groups, want 0", len(binary))
	}
	if len(diverged) != 1 {
		t.Fatalf("got %d diverged groups, want 1", len(diverged))
	}
	if len(diverged[0].Files) != 3 {
		t.Errorf("diverged group has %d members, want all 3 records with that name", len(diverged[0].Files))
	}
}

func TestUnreadableCandidateExcludedFromGrouping(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t, "a", "b")
	f.WriteFile(f.Roots[0], "dup.bin", []byte("payload"))
	locked := f.WriteFile(f.Roots[1], "dup.bin", []byte("payload"))
	f.MakeUnreadable(locked)

	binary, diverged := FindDuplicates(scanAll(t, f.Roots...), nil, nil)

	// The readable copy stands alone, so no group spanning two roots can
	// form, and a single distinct digest means nothing diverged either.
	if len(binary) != 0 {
		t.Errorf("got %d binary groups, want 0", len(binary))
	}
	if len(diverged) != 0 {
		t.Errorf("got %d diverged groups, want 0", len(diverged))
	}
}

func TestCancellationDuringHashingYieldsEmptyResults(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b")
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		f.WriteFile(f.Roots[0], name, []byte("content"))
		f.WriteFile(f.Roots[1], name, []byte("content"))
	}

	checks := 0
	binary, diverged := FindDuplicates(scanAll(t, f.Roots...), nil, func() bool {
		checks++
		return checks > 2 // let some hashing happen first
	})

	if len(binary) != 0 || len(diverged) != 0 {
		t.Errorf("cancelled run returned %d binary and %d diverged groups, want both empty",
			len(binary), len(diverged))
	}
}

func TestThreeRootWastedBytes(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b", "c")
	content := []byte("twelve bytes")
	for _, root := range f.Roots {
		f.WriteFile(root, "copy.dat", content)
	}

	binary, diverged := FindDuplicates(scanAll(t, f.Roots...), nil, nil)

	if len(binary) != 1 || len(binary[0].Files) != 3 {
		t.Fatalf("expected one binary group of 3")
	}
	if got, want := binary[0].WastedBytes(), int64(2*len(content)); got != want {
		t.Errorf("WastedBytes = %d, want %d", got, want)
	}
	if len(diverged) != 0 {
		t.Errorf("got %d diverged groups, want 0", len(diverged))
	}
}

func TestIdempotentMembership(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b")
	f.WriteFile(f.Roots[0], "same.txt", []byte("s"))
	f.WriteFile(f.Roots[1], "same.txt", []byte("s"))
	f.WriteFile(f.Roots[0], "diff.txt", []byte("x"))
	f.WriteFile(f.Roots[1], "diff.txt", []byte("y"))

	membership := func() map[string][]string {
		binary, diverged := FindDuplicates(scanAll(t, f.Roots...), nil, nil)
		m := make(map[string][]string)
		for _, g := range append(binary, diverged...) {
			key := string(g.Type) + "/" + g.SharedName
			var paths []string
			for _, rec := range g.Files {
				paths = append(paths, rec.Path)
			}
			sort.Strings(paths)
			m[key] = paths
		}
		return m
	}

	first := membership()
	second := membership()

	if len(first) != len(second) {
		t.Fatalf("run 1 produced %d groups, run 2 produced %d", len(first), len(second))
	}
	for key, paths := range first {
		other, ok := second[key]
		if !ok {
			t.Errorf("group %s missing from second run", key)
			continue
		}
		if len(paths) != len(other) {
			t.Errorf("group %s membership differs between runs", key)
			continue
		}
		for i := range paths {
			if paths[i] != other[i] {
				t.Errorf("group %s member %d differs: %s vs %s", key, i, paths[i], other[i])
			}
		}
	}
}

func TestProgressReportsCandidateTotals(t *testing.T) {
	f := testutil.NewFixture(t, "a", "b")
	f.WriteFile(f.Roots[0], "shared.txt", []byte("s"))
	f.WriteFile(f.Roots[1], "shared.txt", []byte("s"))
	f.WriteFile(f.Roots[0], "lonely.txt", []byte("l"))

	var lastDone, lastTotal int
	FindDuplicates(scanAll(t, f.Roots...), func(done, total int) {
		lastDone, lastTotal = done, total
	}, nil)

	// Only the two cross-root candidates are hashed; the single-root file
	// never reaches the hasher.
	if lastTotal != 2 {
		t.Errorf("progress total = %d, want 2 candidates", lastTotal)
	}
	if lastDone != 2 {
		t.Errorf("final progress done = %d, want 2", lastDone)
	}
}

func TestNewestOldestTieBreaking(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := &scanner.FileRecord{Path: "/a/f", ModTime: base}
	tied := &scanner.FileRecord{Path: "/b/f", ModTime: base}
	later := &scanner.FileRecord{Path: "/c/f", ModTime: base.Add(time.Hour)}

	g := &DuplicateGroup{Type: Diverged, Files: []*scanner.FileRecord{first, tied, later}}

	if got := g.Newest(); got != later {
		t.Errorf("Newest = %s, want /c/f", got.Path)
	}
	if got := g.Oldest(); got != first {
		t.Errorf("Oldest = %s, want first occurrence /a/f on tie", got.Path)
	}

	empty := &DuplicateGroup{}
	if empty.Newest() != nil || empty.Oldest() != nil {
		t.Error("empty group should have nil newest/oldest")
	}
}

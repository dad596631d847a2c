package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/razakaze/duplicate-finder/internal/analyzer"
	"github.com/razakaze/duplicate-finder/internal/scanner"
	"gopkg.in/yaml.v3"
)

func sampleResult() *analyzer.ScanResult {
	mod := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	a := &scanner.FileRecord{
		Path: "/roots/a/photo.jpg", Root: "/roots/a", RelPath: "photo.jpg",
		Name: "photo.jpg", Size: 2048, ModTime: mod, Digest: "abc123",
	}
	b := &scanner.FileRecord{
		Path: "/roots/b/photo.jpg", Root: "/roots/b", RelPath: "photo.jpg",
		Name: "photo.jpg", Size: 2048, ModTime: mod, Digest: "abc123",
	}
	c := &scanner.FileRecord{
		Path: "/roots/a/notes.md", Root: "/roots/a", RelPath: "notes.md",
		Name: "notes.md", Size: 10, ModTime: mod, Digest: "d1",
	}
	d := &scanner.FileRecord{
		Path: "/roots/b/notes.md", Root: "/roots/b", RelPath: "notes.md",
		Name: "notes.md", Size: 12, ModTime: mod, Digest: "d2",
	}

	return &analyzer.ScanResult{
		Roots: []string{"/roots/a", "/roots/b"},
		BinaryDuplicates: []*analyzer.DuplicateGroup{
			{Type: analyzer.BinaryDuplicate, Files: []*scanner.FileRecord{a, b}, SharedName: "photo.jpg", Digest: "abc123"},
		},
		Diverged: []*analyzer.DuplicateGroup{
			{Type: analyzer.Diverged, Files: []*scanner.FileRecord{c, d}, SharedName: "notes.md"},
		},
		ScanDuration: 1500 * time.Millisecond,
		HashDuration: 250 * time.Millisecond,
		TotalFiles:   4,
		FilesPerRoot: map[string]int{"/roots/a": 2, "/roots/b": 2},
		BytesPerRoot: map[string]int64{"/roots/a": 2058, "/roots/b": 2060},
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteCSV(sampleResult(), dir)
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}

	// Header plus one row per member of every group.
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	if rows[0][0] != "Group ID" {
		t.Errorf("header starts with %q", rows[0][0])
	}

	// Both members of the binary group share a group ID and a digest.
	if rows[1][0] != rows[2][0] {
		t.Error("binary group members have different group IDs")
	}
	if rows[1][8] != "abc123" || rows[2][8] != "abc123" {
		t.Error("binary group rows missing digest")
	}
	if rows[1][1] != string(analyzer.BinaryDuplicate) {
		t.Errorf("match type = %q", rows[1][1])
	}
	if rows[3][1] != string(analyzer.Diverged) {
		t.Errorf("diverged match type = %q", rows[3][1])
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSON(sampleResult(), dir)
	if err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("failed to parse JSON summary: %v", err)
	}

	if s.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", s.TotalFiles)
	}
	if s.BinaryDuplicateGroups != 1 || s.DivergedGroups != 1 {
		t.Errorf("group counts = %d/%d, want 1/1", s.BinaryDuplicateGroups, s.DivergedGroups)
	}
	if s.ReclaimableBytes != 2048 {
		t.Errorf("ReclaimableBytes = %d, want 2048", s.ReclaimableBytes)
	}
	if s.ScanDurationSeconds != 1.5 {
		t.Errorf("ScanDurationSeconds = %f, want 1.5", s.ScanDurationSeconds)
	}
	if s.FilesPerDirectory["/roots/b"] != 2 {
		t.Errorf("FilesPerDirectory = %+v", s.FilesPerDirectory)
	}
}

func TestWriteYAML(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteYAML(sampleResult(), dir)
	if err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}

	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		t.Fatalf("failed to parse YAML summary: %v", err)
	}
	if s.BinaryDuplicateFiles != 1 {
		t.Errorf("BinaryDuplicateFiles = %d, want 1", s.BinaryDuplicateFiles)
	}
	if s.ReclaimableHuman != "2.0 KB" {
		t.Errorf("ReclaimableHuman = %q, want 2.0 KB", s.ReclaimableHuman)
	}
}

func TestWriteSummaryText(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, sampleResult())
	out := buf.String()

	for _, want := range []string{
		"Total files scanned: 4",
		"Identical-copy groups: 1",
		"Modified-version groups: 1",
		"/roots/a",
		"2.0 KB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCSVBadDirectory(t *testing.T) {
	if _, err := WriteCSV(sampleResult(), "/nonexistent/report/dir"); err == nil {
		t.Fatal("expected error for unwritable output directory")
	}
}

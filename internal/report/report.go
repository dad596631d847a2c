// Package report serializes a finished ScanResult to CSV, JSON and YAML
// report files, plus a plain-text summary for terminal output.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/razakaze/duplicate-finder/internal/analyzer"
	"github.com/razakaze/duplicate-finder/pkg/utils"
	"gopkg.in/yaml.v3"
)

// timestamp format used in generated report filenames.
const fileTimestamp = "20060102_150405"

// Summary is the aggregate view serialized by the JSON and YAML writers.
type Summary struct {
	ScanDate              string         `json:"scan_date" yaml:"scan_date"`
	Directories           []string       `json:"directories" yaml:"directories"`
	TotalFiles            int            `json:"total_files" yaml:"total_files"`
	FilesPerDirectory     map[string]int `json:"files_per_directory" yaml:"files_per_directory"`
	BinaryDuplicateGroups int            `json:"binary_duplicate_groups" yaml:"binary_duplicate_groups"`
	BinaryDuplicateFiles  int            `json:"binary_duplicate_files" yaml:"binary_duplicate_files"`
	DivergedGroups        int            `json:"diverged_groups" yaml:"diverged_groups"`
	ReclaimableBytes      int64          `json:"reclaimable_bytes" yaml:"reclaimable_bytes"`
	ReclaimableHuman      string         `json:"reclaimable_human" yaml:"reclaimable_human"`
	ScanDurationSeconds   float64        `json:"scan_duration_seconds" yaml:"scan_duration_seconds"`
	HashDurationSeconds   float64        `json:"hash_duration_seconds" yaml:"hash_duration_seconds"`
}

// NewSummary builds a Summary from a scan result.
func NewSummary(result *analyzer.ScanResult) Summary {
	return Summary{
		ScanDate:              time.Now().Format(time.RFC3339),
		Directories:           result.Roots,
		TotalFiles:            result.TotalFiles,
		FilesPerDirectory:     result.FilesPerRoot,
		BinaryDuplicateGroups: len(result.BinaryDuplicates),
		BinaryDuplicateFiles:  result.DuplicateFileCount(),
		DivergedGroups:        len(result.Diverged),
		ReclaimableBytes:      result.ReclaimableBytes(),
		ReclaimableHuman:      utils.FormatBytes(result.ReclaimableBytes()),
		ScanDurationSeconds:   round2(result.ScanDuration.Seconds()),
		HashDurationSeconds:   round2(result.HashDuration.Seconds()),
	}
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

// WriteCSV writes the per-file detail report and returns the created
// file's path. Every member of every group gets one row.
func WriteCSV(result *analyzer.ScanResult, outputDir string) (string, error) {
	path := filepath.Join(outputDir, fmt.Sprintf("duplicate_report_%s.csv", time.Now().Format(fileTimestamp)))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"Group ID", "Match Type", "Filename", "Full Path", "Directory Root",
		"Size (bytes)", "Size (human)", "Last Modified", "SHA-256",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	groupID := 1
	groups := make([]*analyzer.DuplicateGroup, 0, len(result.BinaryDuplicates)+len(result.Diverged))
	groups = append(groups, result.BinaryDuplicates...)
	groups = append(groups, result.Diverged...)

	for _, group := range groups {
		for _, file := range group.Files {
			row := []string{
				strconv.Itoa(groupID),
				string(group.Type),
				file.Name,
				file.Path,
				file.Root,
				strconv.FormatInt(file.Size, 10),
				utils.FormatBytes(file.Size),
				file.ModTime.Format(time.RFC3339),
				file.Digest,
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
		groupID++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV report: %w", err)
	}
	return path, nil
}

// WriteJSON writes the summary report as JSON and returns the created
// file's path.
func WriteJSON(result *analyzer.ScanResult, outputDir string) (string, error) {
	path := filepath.Join(outputDir, fmt.Sprintf("duplicate_summary_%s.json", time.Now().Format(fileTimestamp)))

	data, err := json.MarshalIndent(NewSummary(result), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON summary: %w", err)
	}
	return path, nil
}

// WriteYAML writes the summary report as YAML and returns the created
// file's path.
func WriteYAML(result *analyzer.ScanResult, outputDir string) (string, error) {
	path := filepath.Join(outputDir, fmt.Sprintf("duplicate_summary_%s.yaml", time.Now().Format(fileTimestamp)))

	data, err := yaml.Marshal(NewSummary(result))
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML summary: %w", err)
	}
	return path, nil
}

// WriteSummary prints a human-readable summary of the scan to w.
func WriteSummary(w io.Writer, result *analyzer.ScanResult) {
	fmt.Fprintf(w, "=== Duplicate Scan Summary ===\n")
	fmt.Fprintf(w, "Directories compared: %d\n", len(result.Roots))
	for _, root := range result.Roots {
		fmt.Fprintf(w, "  %s: %d files, %s\n",
			root, result.FilesPerRoot[root], utils.FormatBytes(result.BytesPerRoot[root]))
	}
	fmt.Fprintf(w, "Total files scanned: %d\n", result.TotalFiles)
	fmt.Fprintf(w, "Identical-copy groups: %d (%d removable files)\n",
		len(result.BinaryDuplicates), result.DuplicateFileCount())
	fmt.Fprintf(w, "Modified-version groups: %d\n", len(result.Diverged))
	fmt.Fprintf(w, "Reclaimable space: %s\n", utils.FormatBytes(result.ReclaimableBytes()))
	fmt.Fprintf(w, "Scan took %s, comparison took %s\n",
		utils.FormatDuration(result.ScanDuration), utils.FormatDuration(result.HashDuration))
}

// Package ui implements the interactive terminal front end. It owns no
// pipeline logic: a scan runs on a background task, the model polls the
// shared progress tracker on a fixed tick, and the single completion or
// error message arrives through the program's message queue.
package ui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	pbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/razakaze/duplicate-finder/internal/analyzer"
	"github.com/razakaze/duplicate-finder/internal/progress"
	"github.com/razakaze/duplicate-finder/internal/ui/styles"
	"github.com/razakaze/duplicate-finder/pkg/utils"
)

// maxGroupRows caps how many duplicate groups the summary view lists.
const maxGroupRows = 8

// tickMsg drives the progress poll.
type tickMsg time.Time

// DoneMsg delivers the engine's result. A nil Result means the run was
// cancelled.
type DoneMsg struct {
	Result *analyzer.ScanResult
}

// ErrMsg delivers a pipeline failure.
type ErrMsg struct {
	Err error
}

// Model is the root bubbletea model for a scan session.
type Model struct {
	tracker *progress.Tracker
	cancel  func()

	spinner spinner.Model
	bar     pbar.Model

	snap       progress.Snapshot
	result     *analyzer.ScanResult
	err        error
	cancelling bool
	done       bool
	width      int
}

// New creates a model that polls tracker and calls cancel when the user
// asks to stop the scan.
func New(tracker *progress.Tracker, cancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	b := pbar.New(pbar.WithDefaultGradient())
	b.Width = 50

	return Model{
		tracker: tracker,
		cancel:  cancel,
		spinner: s,
		bar:     b,
	}
}

// Err returns the pipeline failure the model received, if any.
func (m Model) Err() error { return m.err }

// Init starts the spinner and the progress poll.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, pollTick())
}

func pollTick() tea.Cmd {
	return tea.Tick(progress.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if !m.cancelling {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 10 && w < 60 {
			m.bar.Width = w
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.snap = m.tracker.Snapshot()
		if m.done {
			return m, nil
		}
		return m, pollTick()

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.snap = m.tracker.Snapshot()
		return m, nil

	case ErrMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Duplicate File Finder"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Scan failed"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%v\n\n", m.err))
		b.WriteString(styles.HelpStyle.Render("Press any key to exit"))

	case m.done && m.result == nil:
		b.WriteString(styles.DimStyle.Render("Scan cancelled."))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("Press any key to exit"))

	case m.done:
		m.renderSummary(&b)

	default:
		m.renderProgress(&b)
	}

	return b.String()
}

func (m Model) renderProgress(b *strings.Builder) {
	switch m.snap.Phase {
	case progress.PhaseHashing:
		b.WriteString(styles.SubtitleStyle.Render("Phase 2 of 2: Comparing files"))
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(m.snap.Fraction))
		b.WriteString("\n")
	default:
		b.WriteString(styles.SubtitleStyle.Render("Phase 1 of 2: Scanning files"))
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(" Collecting file metadata...")
		b.WriteString("\n")
	}

	if m.snap.Status != "" {
		b.WriteString(styles.DimStyle.Render(m.snap.Status))
		b.WriteString("\n")
	}

	if len(m.snap.RootCounts) > 0 {
		b.WriteString("\n")
		for _, rc := range m.snap.RootCounts {
			b.WriteString(fmt.Sprintf("  %s: %s files\n",
				styles.FilePathStyle.Render(filepath.Base(rc.Root)),
				styles.BoldStyle.Render(fmt.Sprintf("%d", rc.Files))))
		}
	}

	b.WriteString("\n")
	if m.cancelling {
		b.WriteString(styles.DimStyle.Render("Cancelling..."))
	} else {
		b.WriteString(styles.HelpStyle.Render("Press q to cancel"))
	}
	b.WriteString("\n")
}

func (m Model) renderSummary(b *strings.Builder) {
	r := m.result

	b.WriteString(styles.SuccessStyle.Render("Scan complete"))
	b.WriteString("\n\n")

	for _, root := range r.Roots {
		b.WriteString(fmt.Sprintf("  %s: %s files, %s\n",
			styles.FilePathStyle.Render(root),
			styles.BoldStyle.Render(fmt.Sprintf("%d", r.FilesPerRoot[root])),
			styles.FileSizeStyle.Render(utils.FormatBytes(r.BytesPerRoot[root]))))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Identical-copy groups:   %s\n",
		styles.BoldStyle.Render(fmt.Sprintf("%d", len(r.BinaryDuplicates)))))
	b.WriteString(fmt.Sprintf("Modified-version groups: %s\n",
		styles.BoldStyle.Render(fmt.Sprintf("%d", len(r.Diverged)))))
	b.WriteString(fmt.Sprintf("Reclaimable space:       %s\n",
		styles.SuccessStyle.Render(utils.FormatBytes(r.ReclaimableBytes()))))
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("Scanned in %s, compared in %s\n",
		utils.FormatDuration(r.ScanDuration), utils.FormatDuration(r.HashDuration))))

	if len(r.BinaryDuplicates) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render("Largest duplicate groups"))
		b.WriteString("\n")

		groups := make([]*analyzer.DuplicateGroup, len(r.BinaryDuplicates))
		copy(groups, r.BinaryDuplicates)
		sort.Slice(groups, func(i, j int) bool {
			return groups[i].WastedBytes() > groups[j].WastedBytes()
		})
		if len(groups) > maxGroupRows {
			groups = groups[:maxGroupRows]
		}

		for _, g := range groups {
			b.WriteString(fmt.Sprintf("  %s  %d copies, %s wasted\n",
				styles.FilePathStyle.Render(g.SharedName),
				len(g.Files),
				styles.FileSizeStyle.Render(utils.FormatBytes(g.WastedBytes()))))
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Press any key to exit"))
	b.WriteString("\n")
}

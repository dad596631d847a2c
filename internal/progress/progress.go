// Package progress holds the shared state the scan worker writes and an
// interactive observer polls.
//
// The fields are independent scalars guarded by one mutex, not a single
// snapshot replaced atomically. An observer may occasionally read the
// phase a beat ahead of the fraction; that inconsistency is accepted, no
// field transition is order-dependent for correctness. The worker never
// blocks on an observer.
package progress

import (
	"fmt"
	"sync"
	"time"
)

// PollInterval is the reference cadence at which observers read the
// tracker.
const PollInterval = 200 * time.Millisecond

// Phase identifies the pipeline stage currently running.
type Phase string

const (
	PhaseIdle     Phase = ""
	PhaseScanning Phase = "scanning"
	PhaseHashing  Phase = "hashing"
	PhaseComplete Phase = "complete"
)

// RootCount is a live file count for one scanned root.
type RootCount struct {
	Root  string
	Files int
}

// Snapshot is one observer read of the tracker state.
type Snapshot struct {
	Phase         Phase
	Status        string
	Fraction      float64
	Indeterminate bool
	RootCounts    []RootCount
}

// Tracker provides thread-safe progress state between one writer (the
// scan worker) and any number of polling readers.
type Tracker struct {
	mu            sync.RWMutex
	phase         Phase
	status        string
	fraction      float64
	indeterminate bool
	rootCounts    []RootCount
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Reset clears all state before a new run.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = PhaseIdle
	t.status = ""
	t.fraction = 0
	t.indeterminate = false
	t.rootCounts = nil
}

// SetPhase updates the pipeline phase.
func (t *Tracker) SetPhase(p Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = p
}

// SetStatus updates the one-line status text.
func (t *Tracker) SetStatus(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
}

// SetFraction updates the determinate progress fraction, clamped to
// [0, 1].
func (t *Tracker) SetFraction(f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fraction = f
}

// SetIndeterminate toggles indeterminate mode, used while the total work
// is still unknown (the metadata scan).
func (t *Tracker) SetIndeterminate(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indeterminate = on
}

// SetRootCount updates the live file count for the root at index,
// growing the slice as roots are first reported.
func (t *Tracker) SetRootCount(index int, root string, files int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.rootCounts) <= index {
		t.rootCounts = append(t.rootCounts, RootCount{})
	}
	t.rootCounts[index] = RootCount{Root: root, Files: files}
}

// Snapshot returns a copy of the current state for display.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	counts := make([]RootCount, len(t.rootCounts))
	copy(counts, t.rootCounts)
	return Snapshot{
		Phase:         t.phase,
		Status:        t.status,
		Fraction:      t.fraction,
		Indeterminate: t.indeterminate,
		RootCounts:    counts,
	}
}

// FormatStatus renders a snapshot as a single status line for plain
// terminal output.
func FormatStatus(s Snapshot) string {
	switch s.Phase {
	case PhaseScanning:
		total := 0
		for _, rc := range s.RootCounts {
			total += rc.Files
		}
		return fmt.Sprintf("Scanning... %d files found | %s", total, s.Status)
	case PhaseHashing:
		return fmt.Sprintf("Comparing... %3.0f%% | %s", s.Fraction*100, s.Status)
	case PhaseComplete:
		return s.Status
	default:
		return "Starting..."
	}
}

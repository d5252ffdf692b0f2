package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// LedgerFilename is the fixed name of the resume state file inside the
// output root. It is excluded from archives.
const LedgerFilename = ".fanout-state.json"

// Ledger is the concurrency-safe set of completed task identifiers. One
// ledger exists per run and is shared by all workers.
type Ledger struct {
	mu   sync.Mutex
	done map[string]struct{}
	path string
}

// NewLedger returns an empty ledger rooted at outputRoot.
func NewLedger(outputRoot string) *Ledger {
	return &Ledger{
		done: make(map[string]struct{}),
		path: filepath.Join(outputRoot, LedgerFilename),
	}
}

// LoadLedger reads previously persisted state from outputRoot. A missing
// state file yields an empty ledger; an unreadable or malformed one is a
// StateError, so prior progress is never silently discarded.
func LoadLedger(outputRoot string) (*Ledger, error) {
	l := NewLedger(outputRoot)

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l, nil
		}
		return nil, &StateError{Path: l.path, Err: err}
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, &StateError{Path: l.path, Err: err}
	}
	for _, id := range ids {
		l.done[id] = struct{}{}
	}
	return l, nil
}

// Path returns the on-disk location of the persisted state.
func (l *Ledger) Path() string { return l.path }

// Has reports whether id completed in this or a prior run.
func (l *Ledger) Has(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[id]
	return ok
}

// Record marks id complete. Safe for concurrent use by workers.
func (l *Ledger) Record(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[id] = struct{}{}
}

// Len returns the number of completed identifiers.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// Filter returns the tasks whose identifiers are not yet complete.
func (l *Ledger) Filter(tasks []Task) []Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := l.done[t.ID]; !ok {
			remaining = append(remaining, t)
		}
	}
	return remaining
}

// Completed returns all completed identifiers, sorted.
func (l *Ledger) Completed() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.done))
	for id := range l.done {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save persists the completed set as a sorted JSON array. The state is
// written to a temp file in the same directory and renamed over the old
// one, so a crash mid-write never corrupts valid state.
func (l *Ledger) Save() error {
	ids := l.Completed()

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encode resume state: %w", err)
	}
	data = append(data, '\n')

	tmpPath := tmpPathFor(l.path)
	RegisterTmp(tmpPath)
	defer func() {
		DeregisterTmp(tmpPath)
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write resume state: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		return fmt.Errorf("rename resume state: %w", err)
	}
	return nil
}

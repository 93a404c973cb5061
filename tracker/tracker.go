// Package tracker persists per-file modification timestamps and computes
// the minimal re-scan set between runs.
//
// State lives in a single JSON object mapping file paths to float
// modification timestamps. Every write goes through write-to-temp-then-
// atomic-replace, since watch mode reads and rewrites the file on every
// cycle. The state file is safe to delete at any time; a missing or
// corrupt file simply forces a full re-scan.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Tracker tracks last-scanned modification times for template files.
// Changed and Update are safe for concurrent use: watch mode can start a
// debounced rescan while a previous one is still persisting.
type Tracker struct {
	// Path is the on-disk location of the state file.
	Path string

	mu    sync.Mutex
	state map[string]float64
}

// New creates a tracker backed by the given state file and loads any
// existing state. Load failures are treated as "no prior state".
func New(path string) *Tracker {
	t := &Tracker{Path: path, state: make(map[string]float64)}
	data, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var state map[string]float64
	if err := json.Unmarshal(data, &state); err != nil {
		return t
	}
	t.state = state
	return t
}

// Changed returns the subset of candidates whose on-disk modification
// time differs from (or is absent from) the persisted state. Files that
// cannot be stat'd are omitted.
func (t *Tracker) Changed(candidates []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	for _, path := range candidates {
		mt, err := mtimeOf(path)
		if err != nil {
			continue
		}
		if last, ok := t.state[path]; !ok || last != mt {
			out = append(out, path)
		}
	}
	return out
}

// Update records current modification times for files and removes state
// entries for files that no longer exist, then persists atomically.
func (t *Tracker) Update(files []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, path := range files {
		mt, err := mtimeOf(path)
		if err != nil {
			continue
		}
		t.state[path] = mt
	}
	for path := range t.state {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(t.state, path)
		}
	}
	return t.persist()
}

// persist writes the state file with atomic-replace semantics.
func (t *Tracker) persist() error {
	data, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scan state: %w", err)
	}
	dir := filepath.Dir(t.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".scan-state-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, t.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// mtimeOf returns the file's modification time as float seconds.
func mtimeOf(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return float64(info.ModTime().UnixNano()) / 1e9, nil
}

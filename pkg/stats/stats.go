// Package stats persists per-branch run statistics and formats the deltas
// between consecutive runs.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Record is the snapshot stored for one run identifier.
type Record struct {
	Timestamp    float64        `json:"timestamp"` // Unix seconds.
	TotalFiles   int            `json:"total_files"`
	FullStats    map[string]int `json:"full_stats"`
	OmittedStats map[string]int `json:"omitted_stats"`
}

// NewRecord builds a snapshot taken at now.
func NewRecord(now time.Time, total int, full, omitted map[string]int) Record {
	return Record{
		Timestamp:    float64(now.UnixNano()) / float64(time.Second),
		TotalFiles:   total,
		FullStats:    nonNil(full),
		OmittedStats: nonNil(omitted),
	}
}

// Store maps run identifiers to their latest record.
type Store map[string]Record

// Tracker loads the store once and rewrites it once per run.
type Tracker struct {
	path   string
	store  Store
	logger *zap.Logger
}

// Open reads the store at path. A missing or unparsable file yields an empty
// store; the problem is logged, never returned.
func Open(path string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{path: path, store: Store{}, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to read stats file; starting without prior data", zap.String("path", path), zap.Error(err))
		}
		return t
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		logger.Warn("Failed to parse stats file; starting without prior data", zap.String("path", path), zap.Error(err))
		return t
	}
	if store != nil {
		t.store = store
	}
	return t
}

// Previous returns the stored record for branch.
func (t *Tracker) Previous(branch string) (Record, bool) {
	rec, ok := t.store[branch]
	return rec, ok
}

// Records exposes the loaded records.
func (t *Tracker) Records() Store {
	return t.store
}

// Commit replaces the record for branch and rewrites the file. Records for
// other branches are written back unchanged.
func (t *Tracker) Commit(branch string, rec Record) error {
	t.store[branch] = rec

	data, err := json.MarshalIndent(t.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create stats directory: %w", err)
		}
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save stats file: %w", err)
	}
	t.logger.Debug("Saved run statistics", zap.String("path", t.path), zap.String("branch", branch))
	return nil
}

// FormatDelta renders "10", "10 (+2)" or "10 (-1)". A nil previous value
// means there is no baseline and no delta is shown.
func FormatDelta(current int, previous *int) string {
	if previous == nil {
		return fmt.Sprintf("%d", current)
	}
	switch diff := current - *previous; {
	case diff > 0:
		return fmt.Sprintf("%d (+%d)", current, diff)
	case diff < 0:
		return fmt.Sprintf("%d (%d)", current, diff)
	default:
		return fmt.Sprintf("%d", current)
	}
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

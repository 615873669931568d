package migration

import (
	"fmt"
	"slices"
	"time"
)

// Migration is a paired forward/backward SQL statement identified by a version.
type Migration struct {
	Version int64  `json:"version" yaml:"version"`
	Up      string `json:"up" yaml:"up"`
	Down    string `json:"down" yaml:"down"`
}

// Entry is one row of the ledger table.
type Entry struct {
	ID        int64
	Version   int64
	AppliedAt time.Time
}

// Status is one reconciliation row produced by a status query.
// Date is nil for versions that have not been applied.
type Status struct {
	Applied bool       `json:"applied"`
	Version int64      `json:"version"`
	Date    *time.Time `json:"date,omitempty"`
}

// Sort returns a copy of ms ordered ascending by version.
// The input slice is never modified.
func Sort(ms []Migration) []Migration {
	sorted := slices.Clone(ms)
	slices.SortStableFunc(sorted, func(a, b Migration) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		}
		return 0
	})
	return sorted
}

// Validate checks that every version is positive and unique within ms.
func Validate(ms []Migration) error {
	seen := make(map[int64]struct{}, len(ms))
	for _, m := range ms {
		if m.Version <= 0 {
			return NewSequenceError(m.Version, fmt.Sprintf("invalid migration version %d: must be positive", m.Version))
		}
		if _, dup := seen[m.Version]; dup {
			return NewSequenceError(m.Version, fmt.Sprintf("duplicate migration version %d", m.Version))
		}
		seen[m.Version] = struct{}{}
	}
	return nil
}

// Index maps each version in ms to its migration.
func Index(ms []Migration) map[int64]Migration {
	idx := make(map[int64]Migration, len(ms))
	for _, m := range ms {
		idx[m.Version] = m
	}
	return idx
}

package engine

import "github.com/google/uuid"

// RunIDGenerator generates the id attached to every log record of one
// operation. Implemented by UUIDv7Generator (production) and
// testutil.FixedRunIDs (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids, so log records of
// successive runs sort by start time.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

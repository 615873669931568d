package testutil

// FixedRunIDs returns the same run id every time.
//
// Implements engine.RunIDGenerator so log output of a test run is stable.
// If id is empty, Generate returns "test-run-default".
type FixedRunIDs struct {
	id string
}

// NewFixedRunIDs creates a generator that always returns id.
func NewFixedRunIDs(id string) *FixedRunIDs {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDs{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDs) Generate() string {
	return g.id
}

package engine

import (
	"context"

	"github.com/roach88/litemigrate/internal/migration"
)

// Show reconciles the ledger with the migration list.
//
// Every ledger row (baseline included) is reported as applied, in version
// order, followed by every listed migration above the ledger's max version
// as not applied. Show never modifies the ledger.
func (e *Engine) Show(ctx context.Context, migrations []migration.Migration) ([]migration.Status, error) {
	if err := migration.Validate(migrations); err != nil {
		return nil, err
	}

	s, err := e.open(ctx, "show")
	if err != nil {
		return nil, err
	}
	defer s.close()

	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]migration.Status, 0, len(entries)+len(migrations))
	for _, entry := range entries {
		date := entry.AppliedAt
		statuses = append(statuses, migration.Status{Applied: true, Version: entry.Version, Date: &date})
	}

	current := entries[len(entries)-1].Version
	for _, m := range migration.Sort(migrations) {
		if m.Version > current {
			statuses = append(statuses, migration.Status{Applied: false, Version: m.Version})
		}
	}

	s.log.Debug("status", "current", current, "rows", len(statuses))
	return statuses, nil
}

package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/litemigrate/internal/migration"
)

// ApplyResult describes the outcome of an Apply run.
// On failure it describes the state reached before the failing migration.
type ApplyResult struct {
	// Applied lists versions applied by this run, ascending.
	Applied []int64 `json:"applied"`

	// Skipped lists versions already in the ledger, ascending.
	Skipped []int64 `json:"skipped"`

	// Current is the ledger's max version after the run.
	Current int64 `json:"current"`
}

// Apply runs the forward statement of every migration above the current
// ledger version, in ascending version order.
//
// Versions at or below the current version are skipped. The next version to
// apply must be exactly current+1; any gap aborts the run with a sequence
// error before the migration past the gap runs. Each migration and its ledger
// row commit together; a failing statement aborts the run with an execution
// error and leaves earlier migrations applied.
//
// The result is returned alongside any error raised after the ledger was read.
func (e *Engine) Apply(ctx context.Context, migrations []migration.Migration) (*ApplyResult, error) {
	if err := migration.Validate(migrations); err != nil {
		return nil, err
	}

	s, err := e.open(ctx, "apply")
	if err != nil {
		return nil, err
	}
	defer s.close()

	current, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{Applied: []int64{}, Skipped: []int64{}, Current: current}
	s.log.Info("apply started", "current", current, "migrations", len(migrations))

	for _, m := range migration.Sort(migrations) {
		if m.Version <= result.Current {
			s.log.Info("already applied, skipping", "version", m.Version, "current", result.Current)
			result.Skipped = append(result.Skipped, m.Version)
			continue
		}

		if m.Version-result.Current != 1 {
			s.log.Error("sequence gap", "version", m.Version, "current", result.Current)
			return result, migration.NewSequenceError(m.Version,
				fmt.Sprintf("missing migration before %d (current version %d)", m.Version, result.Current))
		}

		err := s.step(ctx, func(tx *sql.Tx) error {
			if strings.TrimSpace(m.Up) != "" {
				if _, err := tx.ExecContext(ctx, m.Up); err != nil {
					return fmt.Errorf("forward statement: %w", err)
				}
			}
			return s.ledger.Insert(ctx, tx, m.Version, e.now())
		})
		if err != nil {
			s.log.Error("apply failed", "version", m.Version, "error", err)
			return result, migration.NewExecutionError(m.Version, fmt.Sprintf("apply migration %d", m.Version), err)
		}

		result.Applied = append(result.Applied, m.Version)
		result.Current = m.Version
		s.log.Info("applied", "version", m.Version)
	}

	s.log.Info("apply complete", "applied", len(result.Applied), "current", result.Current)
	return result, nil
}

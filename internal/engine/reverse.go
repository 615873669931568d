package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/litemigrate/internal/migration"
)

// ReverseResult describes a reverse run or its dry-run preview.
type ReverseResult struct {
	// Target is the requested new ceiling version.
	Target int64 `json:"target"`

	// From is the ledger's max version before the run.
	From int64 `json:"from"`

	// Reversed lists the versions removed (or, for a dry run, the versions
	// that would be removed), descending.
	Reversed []int64 `json:"reversed"`

	// Current is the ledger's max version after the run. A dry run leaves
	// it equal to From.
	Current int64 `json:"current"`

	// DryRun is true when no statement was executed.
	DryRun bool `json:"dry_run"`
}

// reverseStep is one planned reversal: the migration to undo and the
// ledger's max version once it is gone.
type reverseStep struct {
	migration migration.Migration
	below     int64
}

// Reverse undoes applied migrations above target, newest first, until the
// ledger's max version equals target. The target version itself stays
// applied.
//
// A target above the current version, or below the baseline, is a sequence
// error and leaves the ledger untouched. So is an applied version above the
// target with no migration in the list to undo it. Each backward statement
// and its ledger row deletion commit together; a failure aborts the run with
// an execution error and leaves earlier reversals in place.
func (e *Engine) Reverse(ctx context.Context, target int64, migrations []migration.Migration) (*ReverseResult, error) {
	if err := migration.Validate(migrations); err != nil {
		return nil, err
	}

	s, err := e.open(ctx, "reverse")
	if err != nil {
		return nil, err
	}
	defer s.close()

	result, steps, err := e.planReverse(ctx, s, target, migrations)
	if err != nil {
		return nil, err
	}
	s.log.Info("reverse started", "current", result.From, "target", target, "steps", len(steps))

	for _, st := range steps {
		m := st.migration
		err := s.step(ctx, func(tx *sql.Tx) error {
			if strings.TrimSpace(m.Down) != "" {
				if _, err := tx.ExecContext(ctx, m.Down); err != nil {
					return fmt.Errorf("backward statement: %w", err)
				}
			}
			return s.ledger.Delete(ctx, tx, m.Version)
		})
		if err != nil {
			s.log.Error("reverse failed", "version", m.Version, "error", err)
			return result, migration.NewExecutionError(m.Version, fmt.Sprintf("reverse migration %d", m.Version), err)
		}

		result.Reversed = append(result.Reversed, m.Version)
		result.Current = st.below
		s.log.Info("reversed", "version", m.Version)
	}

	s.log.Info("reverse complete", "reversed", len(result.Reversed), "current", result.Current)
	return result, nil
}

// DryRunReverse previews Reverse: it validates target the same way and
// returns the versions a reverse to target would remove, without executing
// any statement or touching the ledger.
func (e *Engine) DryRunReverse(ctx context.Context, target int64, migrations []migration.Migration) (*ReverseResult, error) {
	if err := migration.Validate(migrations); err != nil {
		return nil, err
	}

	s, err := e.open(ctx, "dry_run_reverse")
	if err != nil {
		return nil, err
	}
	defer s.close()

	result, steps, err := e.planReverse(ctx, s, target, migrations)
	if err != nil {
		return nil, err
	}

	result.DryRun = true
	for _, st := range steps {
		result.Reversed = append(result.Reversed, st.migration.Version)
	}

	s.log.Info("dry run", "current", result.From, "target", target, "would_reverse", result.Reversed)
	return result, nil
}

// planReverse reads the ledger and decides which migrations a reverse to
// target removes. It is the only place that decision is made.
func (e *Engine) planReverse(
	ctx context.Context,
	s *session,
	target int64,
	migrations []migration.Migration,
) (*ReverseResult, []reverseStep, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, nil, err
	}
	current := entries[len(entries)-1].Version

	if target > current {
		s.log.Error("reverse target beyond current version", "target", target, "current", current)
		return nil, nil, migration.NewSequenceError(target,
			fmt.Sprintf("cannot reverse to %d: current version is %d", target, current))
	}
	if target < e.baseline {
		s.log.Error("reverse target below baseline", "target", target, "baseline", e.baseline)
		return nil, nil, migration.NewSequenceError(target,
			fmt.Sprintf("cannot reverse to %d: baseline version is %d", target, e.baseline))
	}

	byVersion := migration.Index(migrations)
	var steps []reverseStep
	for i := len(entries) - 1; i >= 0 && entries[i].Version > target; i-- {
		v := entries[i].Version
		m, ok := byVersion[v]
		if !ok {
			return nil, nil, migration.NewSequenceError(v,
				fmt.Sprintf("no migration to reverse applied version %d", v))
		}
		below := target
		if i > 0 {
			below = entries[i-1].Version
		}
		steps = append(steps, reverseStep{migration: m, below: below})
	}

	result := &ReverseResult{
		Target:   target,
		From:     current,
		Reversed: []int64{},
		Current:  current,
	}
	return result, steps, nil
}

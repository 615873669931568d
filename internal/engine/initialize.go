package engine

import (
	"context"
	"database/sql"

	"github.com/roach88/litemigrate/internal/migration"
)

// Initialize creates the ledger table and seeds it with the baseline row.
//
// Initialize is idempotent: when the ledger already has rows it logs and
// returns created=false without touching them. A ledger table with no rows
// is seeded with the baseline and reported as created.
func (e *Engine) Initialize(ctx context.Context) (created bool, err error) {
	s, err := e.open(ctx, "initialize")
	if err != nil {
		return false, err
	}
	defer s.close()

	exists, err := s.ledger.Exists(ctx, s.conn)
	if err != nil {
		return false, migration.NewExecutionError(0, "read ledger", err)
	}
	if exists {
		entries, err := s.ledger.Entries(ctx, s.conn)
		if err != nil {
			return false, migration.NewExecutionError(0, "read ledger", err)
		}
		if len(entries) > 0 {
			s.log.Info("ledger already initialized", "table", s.ledger.Table())
			return false, nil
		}
		s.log.Warn("ledger table has no rows, seeding baseline", "table", s.ledger.Table())
	}

	at := e.now()
	err = s.step(ctx, func(tx *sql.Tx) error {
		if !exists {
			if err := s.ledger.Create(ctx, tx); err != nil {
				return err
			}
		}
		return s.ledger.Insert(ctx, tx, e.baseline, at)
	})
	if err != nil {
		s.log.Error("initialize failed", "table", s.ledger.Table(), "error", err)
		return false, migration.NewExecutionError(e.baseline, "initialize ledger", err)
	}

	s.log.Info("ledger initialized", "table", s.ledger.Table(), "baseline", e.baseline)
	return true, nil
}

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/litemigrate/internal/backend"
	"github.com/roach88/litemigrate/internal/ledger"
	"github.com/roach88/litemigrate/internal/migration"
)

// DefaultBaseline is the version of the seed row written by Initialize.
// It represents "no real migration applied yet"; the first real migration
// is therefore DefaultBaseline+1.
const DefaultBaseline int64 = 1

// Connector opens one connection per engine operation.
// Implemented by *backend.Connector.
type Connector interface {
	Connect(ctx context.Context) (*backend.Conn, error)
}

// Engine runs migration operations against one target database.
type Engine struct {
	connector Connector
	table     string
	baseline  int64
	logger    *slog.Logger
	now       func() time.Time
	runIDs    RunIDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: discard all records.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTable sets the ledger table name. Default: ledger.DefaultTable.
func WithTable(table string) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithBaseline sets the seed version written by Initialize and the lowest
// valid reverse target. Default: DefaultBaseline.
func WithBaseline(version int64) Option {
	return func(e *Engine) {
		e.baseline = version
	}
}

// WithClock sets the source of ledger timestamps. Default: UTC wall time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunIDs sets the generator for per-operation run ids.
// Default: UUIDv7Generator.
func WithRunIDs(gen RunIDGenerator) Option {
	return func(e *Engine) {
		if gen != nil {
			e.runIDs = gen
		}
	}
}

// New creates an Engine that opens connections through c.
func New(c Connector, opts ...Option) *Engine {
	e := &Engine{
		connector: c,
		table:     ledger.DefaultTable,
		baseline:  DefaultBaseline,
		logger:    slog.New(slog.DiscardHandler),
		now:       func() time.Time { return time.Now().UTC() },
		runIDs:    UUIDv7Generator{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Baseline returns the configured baseline version.
func (e *Engine) Baseline() int64 {
	return e.baseline
}

// session is the state owned by one top-level operation.
type session struct {
	conn   *backend.Conn
	ledger *ledger.Ledger
	log    *slog.Logger
}

// open acquires the operation's connection. Callers must defer close.
func (e *Engine) open(ctx context.Context, op string) (*session, error) {
	log := e.logger.With("op", op, "run_id", e.runIDs.Generate())

	conn, err := e.connector.Connect(ctx)
	if err != nil {
		log.Error("backend unavailable", "error", err)
		return nil, err
	}

	l, err := ledger.New(conn.Dialect(), e.table)
	if err != nil {
		conn.Close()
		return nil, err
	}

	log.Debug("connected", "backend", conn.Dialect().Name(), "table", l.Table())
	return &session{conn: conn, ledger: l, log: log}, nil
}

func (s *session) close() {
	if err := s.conn.Close(); err != nil {
		s.log.Warn("closing connection", "error", err)
	}
}

// requireLedger fails with a configuration error when Initialize has not run.
func (s *session) requireLedger(ctx context.Context) error {
	exists, err := s.ledger.Exists(ctx, s.conn)
	if err != nil {
		return migration.NewExecutionError(0, "read ledger", err)
	}
	if !exists {
		return migration.NewConfigurationError(
			fmt.Sprintf("ledger table %q not found: run init first", s.ledger.Table()), nil)
	}
	return nil
}

// current returns the ledger's max version.
func (s *session) current(ctx context.Context) (int64, error) {
	if err := s.requireLedger(ctx); err != nil {
		return 0, err
	}
	v, err := s.ledger.Current(ctx, s.conn)
	if err != nil {
		return 0, executionUnlessTyped(0, "read current version", err)
	}
	return v, nil
}

// entries returns all ledger rows ascending. An empty ledger is a
// configuration error since Initialize always seeds the baseline.
func (s *session) entries(ctx context.Context) ([]migration.Entry, error) {
	if err := s.requireLedger(ctx); err != nil {
		return nil, err
	}
	entries, err := s.ledger.Entries(ctx, s.conn)
	if err != nil {
		return nil, migration.NewExecutionError(0, "read ledger", err)
	}
	if len(entries) == 0 {
		return nil, migration.NewConfigurationError(
			fmt.Sprintf("ledger table %q has no baseline row", s.ledger.Table()), nil)
	}
	return entries, nil
}

// step runs fn in its own transaction and commits it.
// On failure the transaction is rolled back and fn's error returned.
func (s *session) step(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Warn("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// executionUnlessTyped keeps already-typed errors and wraps everything else
// as an execution error.
func executionUnlessTyped(version int64, message string, err error) error {
	var me *migration.Error
	if errors.As(err, &me) {
		return err
	}
	return migration.NewExecutionError(version, message, err)
}

// Package ledger manages the migration ledger: the table inside the target
// database that records which versions have been applied and when.
//
// Logical schema (DDL varies by dialect):
//
//	id      surrogate primary key
//	version unique, not null integer
//	date    not null timestamp
//
// The ledger is created once, seeded with one baseline row and then grows by
// one row per applied migration and shrinks by one row per reversed migration.
// Rows are never updated. max(version) is the current schema version.
//
// All operations take an Execer or Queryer so they run equally on a pinned
// connection or inside a transaction.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/roach88/litemigrate/internal/backend"
	"github.com/roach88/litemigrate/internal/migration"
)

// DefaultTable is the ledger table name used when none is configured.
const DefaultTable = "migration"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Execer is implemented by *backend.Conn, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Queryer is implemented by *backend.Conn, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ledger builds and runs ledger statements for one dialect and table.
type Ledger struct {
	dialect backend.Dialect
	table   string
}

// New returns a Ledger for the given dialect and table name.
// An empty table selects DefaultTable. Names that are not plain SQL
// identifiers are rejected since they are interpolated into statements.
func New(dialect backend.Dialect, table string) (*Ledger, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, migration.NewConfigurationError(fmt.Sprintf("invalid ledger table name %q", table), nil)
	}
	return &Ledger{dialect: dialect, table: table}, nil
}

// Table returns the ledger table name.
func (l *Ledger) Table() string {
	return l.table
}

// Exists reports whether the ledger table is present.
func (l *Ledger) Exists(ctx context.Context, q Queryer) (bool, error) {
	var count int
	if err := q.QueryRowContext(ctx, l.dialect.TableExistsQuery(), l.table).Scan(&count); err != nil {
		return false, fmt.Errorf("check ledger table: %w", err)
	}
	return count > 0, nil
}

// Create creates the ledger table. It fails if the table already exists;
// callers check Exists first.
func (l *Ledger) Create(ctx context.Context, ex Execer) error {
	if _, err := ex.ExecContext(ctx, l.dialect.LedgerDDL(l.table)); err != nil {
		return fmt.Errorf("create ledger table: %w", err)
	}
	return nil
}

// Insert appends a row recording version as applied at the given time.
func (l *Ledger) Insert(ctx context.Context, ex Execer, version int64, at time.Time) error {
	query := fmt.Sprintf("INSERT INTO %s (version, date) VALUES (%s, %s)",
		l.table, l.dialect.Placeholder(1), l.dialect.Placeholder(2))
	if _, err := ex.ExecContext(ctx, query, version, at); err != nil {
		return fmt.Errorf("record version %d: %w", version, err)
	}
	return nil
}

// Delete removes the row for version. Deleting a version that has no row is
// an error so a reverse never silently diverges from the ledger.
func (l *Ledger) Delete(ctx context.Context, ex Execer, version int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE version = %s", l.table, l.dialect.Placeholder(1))
	result, err := ex.ExecContext(ctx, query, version)
	if err != nil {
		return fmt.Errorf("remove version %d: %w", version, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove version %d: rows affected: %w", version, err)
	}
	if n == 0 {
		return fmt.Errorf("remove version %d: no ledger row", version)
	}
	return nil
}

// Current returns the highest applied version.
// An empty ledger has no current version and yields a configuration error.
func (l *Ledger) Current(ctx context.Context, q Queryer) (int64, error) {
	var current sql.NullInt64
	query := fmt.Sprintf("SELECT MAX(version) FROM %s", l.table)
	if err := q.QueryRowContext(ctx, query).Scan(&current); err != nil {
		return 0, fmt.Errorf("read current version: %w", err)
	}
	if !current.Valid {
		return 0, migration.NewConfigurationError(fmt.Sprintf("ledger table %q has no baseline row", l.table), nil)
	}
	return current.Int64, nil
}

// Entries returns every ledger row ordered ascending by version.
func (l *Ledger) Entries(ctx context.Context, q Queryer) ([]migration.Entry, error) {
	query := fmt.Sprintf("SELECT id, version, date FROM %s ORDER BY version ASC", l.table)
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer rows.Close()

	var entries []migration.Entry
	for rows.Next() {
		var e migration.Entry
		if err := rows.Scan(&e.ID, &e.Version, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return entries, nil
}

// Package backend connects litemigrate to a relational database.
//
// A Connector is built from a Descriptor whose Kind selects one Dialect
// variant (sqlite, postgres, mysql). Every variant exposes the same logical
// contract: open a handle, execute parameterized statements, commit through a
// transaction, close. Dialects differ only in their driver, connection string,
// positional placeholder style and ledger DDL.
//
// Connection failures are never retried here. They surface as
// migration.KindConnection errors wrapping the driver error.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/litemigrate/internal/migration"
)

// Supported backend kinds.
const (
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindMySQL    = "mysql"
)

// Descriptor identifies a target database.
// DSN, when set, is passed to the driver verbatim and overrides the other
// connection fields.
type Descriptor struct {
	Kind     string `json:"kind" yaml:"kind"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Dialect captures what differs between SQL backends.
type Dialect interface {
	// Name returns the backend kind, e.g. "sqlite".
	Name() string

	// DriverName returns the database/sql driver name.
	DriverName() string

	// DSN builds the driver connection string for d.
	DSN(d Descriptor) (string, error)

	// Placeholder returns the positional parameter marker for the n-th
	// argument (1-based).
	Placeholder(n int) string

	// LedgerDDL returns the CREATE TABLE statement for the ledger table.
	LedgerDDL(table string) string

	// TableExistsQuery returns a query taking the table name as its only
	// parameter and yielding a single count.
	TableExistsQuery() string
}

var dialects = map[string]Dialect{
	KindSQLite:   sqliteDialect{},
	KindPostgres: postgresDialect{},
	KindMySQL:    mysqlDialect{},
}

// Kinds returns the supported backend kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(dialects))
	for k := range dialects {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// LookupDialect returns the dialect registered for kind.
func LookupDialect(kind string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return nil, migration.NewConfigurationError(
			fmt.Sprintf("unsupported backend kind %q: must be one of %v", kind, Kinds()), nil)
	}
	return d, nil
}

// Connector opens connections for one Descriptor.
type Connector struct {
	dialect Dialect
	dsn     string
}

// New validates desc and returns a Connector for it.
// Unknown kinds, unregistered drivers and incomplete descriptors are
// configuration errors. No connection is opened.
func New(desc Descriptor) (*Connector, error) {
	dialect, err := LookupDialect(desc.Kind)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(sql.Drivers(), dialect.DriverName()) {
		return nil, migration.NewConfigurationError(
			fmt.Sprintf("driver %q for backend %s is not available", dialect.DriverName(), dialect.Name()), nil)
	}

	dsn := desc.DSN
	if dsn == "" {
		dsn, err = dialect.DSN(desc)
		if err != nil {
			return nil, migration.NewConfigurationError(fmt.Sprintf("invalid %s descriptor", dialect.Name()), err)
		}
	}

	return &Connector{dialect: dialect, dsn: dsn}, nil
}

// Dialect returns the connector's dialect.
func (c *Connector) Dialect() Dialect {
	return c.dialect
}

// Connect opens a pool, pins exactly one connection from it and verifies the
// connection with a ping. The caller must Close the returned Conn.
func (c *Connector) Connect(ctx context.Context) (*Conn, error) {
	db, err := sql.Open(c.dialect.DriverName(), c.dsn)
	if err != nil {
		return nil, migration.NewConnectionError(fmt.Sprintf("open %s database", c.dialect.Name()), err)
	}

	// One run, one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, migration.NewConnectionError(fmt.Sprintf("connect to %s database", c.dialect.Name()), err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, migration.NewConnectionError(fmt.Sprintf("ping %s database", c.dialect.Name()), err)
	}

	return &Conn{db: db, conn: conn, dialect: c.dialect}, nil
}

// Conn is a single pinned database connection.
type Conn struct {
	db      *sql.DB
	conn    *sql.Conn
	dialect Dialect
}

// Dialect returns the dialect the connection was opened with.
func (c *Conn) Dialect() Dialect {
	return c.dialect
}

// ExecContext executes a parameterized statement outside any transaction.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// QueryContext executes a query returning rows. Callers close the rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query expected to return at most one row.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction on the pinned connection.
// Work done through the transaction is committed with tx.Commit.
func (c *Conn) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.conn.BeginTx(ctx, opts)
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return c.db == nil
}

// Close releases the pinned connection and its pool.
// Safe to call more than once.
func (c *Conn) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	var errs []error
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
		c.conn = nil
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, err)
	}
	c.db = nil
	return errors.Join(errs...)
}

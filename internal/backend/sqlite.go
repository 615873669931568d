package backend

import (
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteDialect targets a file-based SQLite database through mattn/go-sqlite3.
type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return KindSQLite }
func (sqliteDialect) DriverName() string { return "sqlite3" }

// DSN appends the driver parameters applied to every connection:
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=on: enforce referential integrity in migrations
func (sqliteDialect) DSN(d Descriptor) (string, error) {
	if d.Path == "" {
		return "", errors.New("sqlite backend requires a path")
	}
	sep := "?"
	if strings.Contains(d.Path, "?") {
		sep = "&"
	}
	return d.Path + sep + "_busy_timeout=5000&_foreign_keys=on", nil
}

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) LedgerDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
		id INTEGER PRIMARY KEY NOT NULL,
		version INTEGER UNIQUE NOT NULL,
		date TIMESTAMP NOT NULL
	)`, table)
}

func (sqliteDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

package backend

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const defaultPostgresPort = 5432

// postgresDialect targets PostgreSQL through the pgx database/sql driver.
type postgresDialect struct{}

func (postgresDialect) Name() string       { return KindPostgres }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) DSN(d Descriptor) (string, error) {
	if d.Database == "" {
		return "", errors.New("postgres backend requires a database name")
	}
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	port := d.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + d.Database,
	}
	switch {
	case d.User != "" && d.Password != "":
		u.User = url.UserPassword(d.User, d.Password)
	case d.User != "":
		u.User = url.User(d.User)
	}
	return u.String(), nil
}

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) LedgerDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
		id BIGSERIAL PRIMARY KEY,
		version INTEGER UNIQUE NOT NULL,
		date TIMESTAMP NOT NULL
	)`, table)
}

func (postgresDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1"
}

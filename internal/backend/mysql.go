package backend

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

const defaultMySQLPort = 3306

// mysqlDialect targets MySQL and MariaDB through go-sql-driver/mysql.
//
// MySQL commits DDL implicitly, so a migration step whose forward statement
// is DDL is not atomic with its ledger row.
type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return KindMySQL }
func (mysqlDialect) DriverName() string { return "mysql" }

// DSN enables parseTime so ledger dates scan into time.Time, and
// multiStatements so a migration may carry several statements.
func (mysqlDialect) DSN(d Descriptor) (string, error) {
	if d.Database == "" {
		return "", errors.New("mysql backend requires a database name")
	}
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	port := d.Port
	if port == 0 {
		port = defaultMySQLPort
	}

	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) LedgerDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE %s (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		version INTEGER UNIQUE NOT NULL,
		date DATETIME(6) NOT NULL
	)`, table)
}

func (mysqlDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported dialects.  MySQL is the production store; SQLite serves
// local runs and the test suites.
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

// MySQLDSN builds a go-sql-driver DSN from discrete connection settings.
func MySQLDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}

// DialectOf guesses the driver from the DSN shape.  SQLite DSNs are
// file: URIs, :memory: or paths ending in .db/.sqlite.
func DialectOf(dsn string) string {
	d := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(d, "sqlite://"),
		strings.HasPrefix(d, "file:"),
		strings.HasPrefix(d, ":memory:"),
		strings.HasSuffix(d, ".db"),
		strings.HasSuffix(d, ".sqlite"):
		return DialectSQLite
	}
	return DialectMySQL
}

// Open connects to the store named by dsn and verifies the connection.
// It returns the handle together with the detected dialect so callers
// can run the matching migrations.
func Open(dsn string) (*sql.DB, string, error) {
	dialect := DialectOf(dsn)
	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, "", err
	}

	// Pool settings
	if dialect == DialectSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", err
	}
	return db, dialect, nil
}

// sqliteDSN strips the sqlite:// scheme and turns on foreign keys and a
// busy timeout unless the caller already set pragmas.
func sqliteDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

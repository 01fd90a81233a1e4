package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectOf(t *testing.T) {
	cases := map[string]string{
		"file:parking.db":                   DialectSQLite,
		"sqlite:///tmp/parking.db":          DialectSQLite,
		":memory:":                          DialectSQLite,
		"/var/lib/parking.sqlite":           DialectSQLite,
		"root@tcp(localhost:3306)/parking":  DialectMySQL,
		"u:p@tcp(db:3306)/p?parseTime=true": DialectMySQL,
	}
	for dsn, want := range cases {
		assert.Equal(t, want, DialectOf(dsn), dsn)
	}
}

func TestMySQLDSN(t *testing.T) {
	assert.Equal(t,
		"root@tcp(localhost:3306)/parking?charset=utf8mb4&parseTime=true&loc=UTC",
		MySQLDSN("root", "", "localhost", "3306", "parking"))
	assert.Equal(t,
		"app:secret@tcp(db:3307)/lots?charset=utf8mb4&parseTime=true&loc=UTC",
		MySQLDSN("app", "secret", "db", "3307", "lots"))
}

func TestSqliteDSNAddsPragmas(t *testing.T) {
	assert.Equal(t, "file:x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:x.db"))
	assert.Equal(t, "file:x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("sqlite://file:x.db?mode=rwc"))
	assert.Equal(t, "file:x.db?_pragma=journal_mode(WAL)", sqliteDSN("file:x.db?_pragma=journal_mode(WAL)"))
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "parking.db")
	db, dialect, err := Open(dsn)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, DialectSQLite, dialect)

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, dialect))
	// second run is a no-op
	require.NoError(t, Migrate(ctx, db, dialect))

	for _, table := range []string{"users", "refresh_tokens", "parking_lots", "parking_spots", "reservations"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// service package to distinguish between different failure scenarios
// without inspecting driver specific errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConflict is returned when an insert or update collides with a
// unique constraint, such as a duplicate spot number within a lot.
var ErrConflict = errors.New("conflict")

// ErrLotNotFound indicates that a parking lot was not located in the DB.
var ErrLotNotFound = errors.New("parking lot not found")

// ErrSpotNotFound indicates that a parking spot was not located in the DB.
var ErrSpotNotFound = errors.New("parking spot not found")

// ErrReservationNotFound indicates that no matching reservation exists.
var ErrReservationNotFound = errors.New("reservation not found")

// isUniqueViolation reports whether err came from a unique index on
// either supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// inClause expands ids into a "?,?,?" placeholder list and the matching
// argument slice.  Callers must not pass an empty slice.
func inClause(ids []uint64) (string, []interface{}) {
	ph := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		args[i] = id
	}
	return strings.Join(ph, ","), args
}

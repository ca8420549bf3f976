package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// mysqlDupEntry is MySQL error 1062 (duplicate entry for a unique key).
const mysqlDupEntry = 1062

// IsUniqueViolation reports whether err is a unique-constraint violation
// from either supported driver. The pre-insert duplicate checks in the
// repositories are only a convenience; this translation of the constraint
// error is what actually guarantees uniqueness under concurrent writes.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDupEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish "no such row" and "unique key
// violated" from infrastructure failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup or conditional update matches no
// row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when an insert or update violates a unique
// index (username or email).
var ErrDuplicateKey = errors.New("duplicate key")

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-entry error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

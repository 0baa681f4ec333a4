// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed due to
// existing records (e.g. deleting a role that users still reference).
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Lookup failures.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrNavigationNotFound = errors.New("navigation link not found")
	ErrMenuNotFound       = errors.New("menu entry not found")
)

// Uniqueness violations.  Each one is also an ErrConflict.
var (
	ErrHandleExists   = conflict("handle already exists")
	ErrRoleNameExists = conflict("role name already exists")
	ErrURLExists      = conflict("url already exists")
	ErrRoleInUse      = conflict("role is referenced by users or navigation links")
)

type conflictError struct{ msg string }

func conflict(msg string) error { return &conflictError{msg: msg} }

func (e *conflictError) Error() string        { return e.msg }
func (e *conflictError) Is(target error) bool { return target == ErrConflict }

// mysqlDuplicateEntry is the server error number for a unique key clash.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique constraint violation from
// MySQL or SQLite.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

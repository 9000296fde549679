// Package sqlerr classifies database driver errors into constraint kinds.
//
// Typed driver errors are recognized first (lib/pq, go-sql-driver/mysql and
// modernc.org/sqlite); anything else falls back to matching the well-known
// message fragments of each database.
package sqlerr

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// Kind is the kind of a violated constraint.
type Kind string

// Constraint kinds. None means the error is not a constraint violation.
const (
	None       Kind = ""
	Unique     Kind = "unique"
	PrimaryKey Kind = "primary key"
	ForeignKey Kind = "foreign key"
	Check      Kind = "check"
	NotNull    Kind = "not null"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlBadNull                = 1048
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// SQLite extended result codes.
const (
	sqliteConstraint           = 19
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// Classify returns the constraint kind of err, or None.
func Classify(err error) Kind {
	if err == nil {
		return None
	}
	if e, ok := asError[*pq.Error](err); ok {
		return postgresKind(string(e.Code))
	}
	if e, ok := asError[*mysql.MySQLError](err); ok {
		return mysqlKind(e.Number)
	}
	if e, ok := asError[*sqlite.Error](err); ok {
		if k := sqliteKind(e.Code()); k != None || e.Code() != sqliteConstraint {
			return k
		}
	}
	return messageKind(err.Error())
}

// IsConstraintError reports whether err resulted from a constraint violation.
func IsConstraintError(err error) bool {
	return Classify(err) != None
}

// IsUniqueConstraintError reports whether err resulted from a uniqueness
// or primary key violation, e.g. a duplicate value in a unique index.
func IsUniqueConstraintError(err error) bool {
	k := Classify(err)
	return k == Unique || k == PrimaryKey
}

// IsForeignKeyConstraintError reports whether err resulted from a
// foreign-key violation, e.g. the parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	return Classify(err) == ForeignKey
}

// IsCheckConstraintError reports whether err resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	return Classify(err) == Check
}

// IsNotNullConstraintError reports whether err resulted from writing NULL
// into a NOT NULL column.
func IsNotNullConstraintError(err error) bool {
	return Classify(err) == NotNull
}

func postgresKind(code string) Kind {
	switch code {
	case pgUniqueViolation:
		return Unique
	case pgForeignKeyViolation:
		return ForeignKey
	case pgCheckViolation:
		return Check
	case pgNotNullViolation:
		return NotNull
	}
	return None
}

func mysqlKind(num uint16) Kind {
	switch num {
	case mysqlDuplicateEntry:
		return Unique
	case mysqlForeignKeyParent, mysqlForeignKeyChild:
		return ForeignKey
	case mysqlCheckConstraintViolate:
		return Check
	case mysqlBadNull:
		return NotNull
	}
	return None
}

func sqliteKind(code int) Kind {
	switch code {
	case sqliteConstraintUnique:
		return Unique
	case sqliteConstraintPrimaryKey:
		return PrimaryKey
	case sqliteConstraintForeignKey:
		return ForeignKey
	case sqliteConstraintCheck:
		return Check
	case sqliteConstraintNotNull:
		return NotNull
	}
	return None
}

// messageKind matches the error text for drivers without typed errors.
func messageKind(msg string) Kind {
	switch {
	case containsAny(msg,
		"Error 1062",                 // MySQL
		"violates unique constraint", // Postgres
		"UNIQUE constraint failed",   // SQLite
	):
		return Unique
	case containsAny(msg, "PRIMARY KEY constraint failed"):
		return PrimaryKey
	case containsAny(msg,
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	):
		return ForeignKey
	case containsAny(msg,
		"Error 3819",
		"violates check constraint",
		"CHECK constraint failed",
	):
		return Check
	case containsAny(msg,
		"Error 1048",
		"violates not-null constraint",
		"NOT NULL constraint failed",
	):
		return NotNull
	}
	return None
}

// asError extracts an error of type T from the error chain.
func asError[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package velq

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for cardinality expectations.
var (
	// ErrNoResult is returned when a query that expects exactly one row
	// returns none.
	ErrNoResult = errors.New("velq: no result")

	// ErrTooManyResults is returned when a query that expects at most one row
	// returns more.
	ErrTooManyResults = errors.New("velq: too many results")
)

// NoResultError represents an exactly-one fetch that matched zero rows.
type NoResultError struct {
	label string
}

// Error returns the error string.
func (e *NoResultError) Error() string {
	return fmt.Sprintf("velq: %s: no result", e.label)
}

// Is reports whether the target error matches NoResultError.
// This allows errors.Is(noResultErr, ErrNoResult) to return true.
func (e *NoResultError) Is(err error) bool {
	return err == ErrNoResult
}

// Label returns the label of the queried source.
func (e *NoResultError) Label() string {
	return e.label
}

// NewNoResultError returns a new NoResultError for the given source label.
func NewNoResultError(label string) *NoResultError {
	return &NoResultError{label: label}
}

// IsNoResult returns true if the error is a NoResultError.
func IsNoResult(err error) bool {
	if err == nil {
		return false
	}
	var e *NoResultError
	return errors.As(err, &e) || errors.Is(err, ErrNoResult)
}

// TooManyResultsError represents a fetch that expected at most one row but
// received more.
type TooManyResultsError struct {
	label string
	count int // Number of rows seen (-1 if unknown)
}

// Error returns the error string.
func (e *TooManyResultsError) Error() string {
	if e.count >= 0 {
		return fmt.Sprintf("velq: %s: too many results (got %d, expected at most 1)", e.label, e.count)
	}
	return fmt.Sprintf("velq: %s: too many results", e.label)
}

// Is reports whether the target error matches TooManyResultsError.
func (e *TooManyResultsError) Is(err error) bool {
	return err == ErrTooManyResults
}

// Label returns the label of the queried source.
func (e *TooManyResultsError) Label() string {
	return e.label
}

// Count returns the number of rows seen, or -1 if unknown.
func (e *TooManyResultsError) Count() int {
	return e.count
}

// NewTooManyResultsError returns a new TooManyResultsError with an unknown count.
func NewTooManyResultsError(label string) *TooManyResultsError {
	return &TooManyResultsError{label: label, count: -1}
}

// NewTooManyResultsErrorWithCount returns a new TooManyResultsError with the row count.
func NewTooManyResultsErrorWithCount(label string, count int) *TooManyResultsError {
	return &TooManyResultsError{label: label, count: count}
}

// IsTooManyResults returns true if the error is a TooManyResultsError.
func IsTooManyResults(err error) bool {
	if err == nil {
		return false
	}
	var e *TooManyResultsError
	return errors.As(err, &e) || errors.Is(err, ErrTooManyResults)
}

// SchemaError represents a malformed schema declaration.
type SchemaError struct {
	Table  string // Table being declared
	Column string // Column or relationship name, if any
	Msg    string
}

// Error returns the error string.
func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("velq: schema: %s.%s: %s", e.Table, e.Column, e.Msg)
	}
	return fmt.Sprintf("velq: schema: %s: %s", e.Table, e.Msg)
}

// IsSchemaError returns true if the error is a SchemaError.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaError
	return errors.As(err, &e)
}

// UnknownRelationshipError is returned when navigating a relationship that
// was not declared on the table.
type UnknownRelationshipError struct {
	Table        string
	Relationship string
}

// Error returns the error string.
func (e *UnknownRelationshipError) Error() string {
	return fmt.Sprintf("velq: table %q has no relationship %q", e.Table, e.Relationship)
}

// IsUnknownRelationship returns true if the error is an UnknownRelationshipError.
func IsUnknownRelationship(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownRelationshipError
	return errors.As(err, &e)
}

// TypeMismatchError is returned when a value or column is not compatible
// with the declared type of the column it is compared to or assigned to.
type TypeMismatchError struct {
	Column   string // Qualified column name
	Expected string // Declared column type
	Got      string // Offending Go type or column type
}

// Error returns the error string.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("velq: type mismatch for %s: expected %s, got %s", e.Column, e.Expected, e.Got)
}

// IsTypeMismatch returns true if the error is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// MissingColumnError is returned when an insert omits required columns.
type MissingColumnError struct {
	Table   string
	Columns []string
}

// Error returns the error string.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("velq: insert into %s: missing required columns: %s", e.Table, strings.Join(e.Columns, ", "))
}

// IsMissingColumn returns true if the error is a MissingColumnError.
func IsMissingColumn(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingColumnError
	return errors.As(err, &e)
}

// UnboundColumnError is returned when a statement references a column whose
// table is not part of the statement's sources.
type UnboundColumnError struct {
	Column string // Qualified column name
	Source string // Alias the column is bound to
}

// Error returns the error string.
func (e *UnboundColumnError) Error() string {
	return fmt.Sprintf("velq: column %s references %q, which is not a source of the statement", e.Column, e.Source)
}

// IsUnboundColumn returns true if the error is an UnboundColumnError.
func IsUnboundColumn(err error) bool {
	if err == nil {
		return false
	}
	var e *UnboundColumnError
	return errors.As(err, &e)
}

// BuildError wraps a statement construction failure that has no more
// specific type, such as a missing FROM clause or a values arity mismatch.
type BuildError struct {
	Stmt string // Statement kind (e.g., "select", "insert")
	Err  error
}

// Error returns the error string.
func (e *BuildError) Error() string {
	return fmt.Sprintf("velq: build %s: %v", e.Stmt, e.Err)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError returns a new BuildError with a formatted message.
func NewBuildError(stmt, format string, args ...any) *BuildError {
	return &BuildError{Stmt: stmt, Err: fmt.Errorf(format, args...)}
}

// MappingError is returned when a result row does not fit the target type.
type MappingError struct {
	Type  string // Target Go type
	Field string // Target field, if known
	Err   error
}

// Error returns the error string.
func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("velq: mapping into %s.%s: %v", e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("velq: mapping into %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Err
}

// IsMappingError returns true if the error is a MappingError.
func IsMappingError(err error) bool {
	if err == nil {
		return false
	}
	var e *MappingError
	return errors.As(err, &e)
}

// DatabaseError wraps a failure reported by the database or its driver.
type DatabaseError struct {
	Op         string // Operation (e.g., "query", "exec", "begin", "commit")
	Query      string // SQL text, if any
	Constraint string // Violated constraint kind, empty when not a constraint violation
	Err        error  // Underlying driver error
}

// Error returns the error string.
func (e *DatabaseError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("velq: %s: %s constraint failed: %v", e.Op, e.Constraint, e.Err)
	}
	return fmt.Sprintf("velq: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// IsDatabaseError returns true if the error is a DatabaseError.
func IsDatabaseError(err error) bool {
	if err == nil {
		return false
	}
	var e *DatabaseError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error is a DatabaseError caused by
// a constraint violation.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e *DatabaseError
	return errors.As(err, &e) && e.Constraint != ""
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Error returned by the rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("velq: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

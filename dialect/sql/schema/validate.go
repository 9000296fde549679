package schema

import (
	"context"
	"fmt"
	"strings"

	velqschema "github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/field"
)

// ValidationError is a difference between a declared table and the
// database.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates that statements built from the declared table
	// fail against the database.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of a schema check.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking differences.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) report(err *ValidationError, asError bool) {
	if asError {
		r.Errors = append(r.Errors, err)
	} else {
		r.Warnings = append(r.Warnings, err)
	}
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowUndeclared   bool
	strictNullability bool
}

// AllowUndeclaredColumns reports required database columns that are not
// declared as warnings instead of errors.
func AllowUndeclaredColumns() ValidateOption {
	return func(c *validateConfig) {
		c.allowUndeclared = true
	}
}

// StrictNullability reports nullability differences as errors.
func StrictNullability() ValidateOption {
	return func(c *validateConfig) {
		c.strictNullability = true
	}
}

// Check inspects the database behind drv and compares it with the declared
// tables.
//
// Example:
//
//	result, err := schema.Check(ctx, drv, registry.Tables())
//	if err != nil {
//	    return err
//	}
//	if result.HasErrors() {
//	    log.Fatal("schema drift detected:\n", result)
//	}
func Check(ctx context.Context, drv Querier, tables []*velqschema.Table, opts ...ValidateOption) (*ValidationResult, error) {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	current, err := Inspect(ctx, drv, names...)
	if err != nil {
		return nil, err
	}
	return Validate(current, tables, opts...), nil
}

// Validate compares the tables found in the database with the declared
// ones.
func Validate(current []*Table, declared []*velqschema.Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	currentMap := make(map[string]*Table, len(current))
	for _, t := range current {
		currentMap[t.Name] = t
	}
	for _, t := range declared {
		c, ok := currentMap[t.Name]
		if !ok {
			result.report(&ValidationError{Table: t.Name, Message: "table does not exist", Breaking: true}, true)
			continue
		}
		validateTable(c, t, cfg, result)
	}
	return result
}

func validateTable(current *Table, declared *velqschema.Table, cfg *validateConfig, result *ValidationResult) {
	for _, col := range declared.Columns {
		cur, ok := current.Column(col.Name)
		if !ok {
			result.report(&ValidationError{Table: declared.Name, Column: col.Name, Message: "column does not exist", Breaking: true}, true)
			continue
		}
		validateColumn(cur, col, cfg, result)
	}
	for _, cur := range current.Columns {
		if _, ok := declared.Column(cur.Name); ok || cur.Nullable || cur.Default {
			continue
		}
		result.report(&ValidationError{
			Table:    declared.Name,
			Column:   cur.Name,
			Message:  "undeclared NOT NULL column without default value rejects inserts",
			Breaking: true,
		}, !cfg.allowUndeclared)
	}
}

func validateColumn(cur *Column, col *velqschema.Column, cfg *validateConfig, result *ValidationResult) {
	table := col.Table.Name
	if t := cur.FieldType(); t.Valid() && !compatible(col.Type, t) {
		result.report(&ValidationError{
			Table:   table,
			Column:  col.Name,
			Message: fmt.Sprintf("declared as %s, database type %s", col.Type, cur.Type),
		}, false)
	}
	switch {
	case !col.Nullable && cur.Nullable:
		result.report(&ValidationError{
			Table:   table,
			Column:  col.Name,
			Message: "declared NOT NULL, database column is nullable",
		}, cfg.strictNullability)
	case col.Nullable && !cur.Nullable:
		result.report(&ValidationError{
			Table:    table,
			Column:   col.Name,
			Message:  "declared nullable, database column is NOT NULL",
			Breaking: true,
		}, cfg.strictNullability)
	}
	if col.Default && !cur.Default && !cur.Nullable {
		result.report(&ValidationError{
			Table:    table,
			Column:   col.Name,
			Message:  "declared with a default value, database column has none",
			Breaking: true,
		}, true)
	}
	if col.Primary && !cur.Primary {
		result.report(&ValidationError{
			Table:   table,
			Column:  col.Name,
			Message: "declared as primary key, database column is not",
		}, false)
	}
}

// compatible reports whether values of a database column of type db can be
// read into a declared column of type t.
func compatible(t, db field.Type) bool {
	if t == field.TypeUUID {
		return db == field.TypeUUID || db == field.TypeString || db == field.TypeBytes
	}
	if t == field.TypeBool && db.Integer() {
		return true
	}
	// SQLite stores timestamps as text.
	if t == field.TypeTime && db == field.TypeString {
		return true
	}
	return t.Comparable(db)
}

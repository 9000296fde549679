package record

import (
	"errors"
	"slices"

	"github.com/syssam/velq"
	"github.com/syssam/velq/schema"
)

// Record is a mutable set of column values bound to a table. It is used to
// insert rows and to store changes to rows that were loaded.
type Record struct {
	table   *schema.Table
	values  map[string]any
	changed []string // columns set since the record was created or stored.
	stored  bool
	err     error
}

// New returns an empty record of table.
func New(table *schema.Table) *Record {
	return &Record{table: table, values: make(map[string]any)}
}

// Load returns a record of table holding the values of row. The record
// counts as stored: Store updates it instead of inserting it.
func Load(table *schema.Table, row Row) (*Record, error) {
	r := New(table)
	for i, name := range row.Fields {
		if _, ok := table.Column(name); !ok {
			return nil, &velq.MappingError{Type: table.Name, Field: name, Err: errors.New("unknown column")}
		}
		r.values[name] = row.Values[i]
	}
	r.stored = true
	return r, nil
}

// Table returns the table of the record.
func (r *Record) Table() *schema.Table { return r.table }

// Set sets a column value. Unknown columns and values that do not fit the
// column type are reported by Err.
func (r *Record) Set(column string, v any) *Record {
	c, ok := r.table.Column(column)
	switch {
	case !ok:
		r.err = errors.Join(r.err, &velq.SchemaError{Table: r.table.Name, Column: column, Msg: "unknown column"})
		return r
	case v == nil && !c.Nullable:
		r.err = errors.Join(r.err, &velq.TypeMismatchError{Column: c.String(), Expected: c.Type.String(), Got: "nil"})
		return r
	case v != nil && !c.Type.Accepts(v):
		r.err = errors.Join(r.err, &velq.TypeMismatchError{Column: c.String(), Expected: c.Type.String(), Got: typeName(v)})
		return r
	}
	r.values[column] = v
	if !slices.Contains(r.changed, column) {
		r.changed = append(r.changed, column)
	}
	return r
}

// Get returns a column value.
func (r *Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Err returns the errors recorded by Set.
func (r *Record) Err() error { return r.err }

// Stored reports whether the record was loaded from or stored to the
// database.
func (r *Record) Stored() bool { return r.stored }

// Changed returns the columns set since the record was created or last
// stored, in the order they were first set.
func (r *Record) Changed() []string { return slices.Clone(r.changed) }

// Columns returns the columns holding a value, in table order.
func (r *Record) Columns() []string {
	var cols []string
	for _, c := range r.table.Columns {
		if _, ok := r.values[c.Name]; ok {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// Values returns the values of the given columns.
func (r *Record) Values(columns []string) []any {
	vs := make([]any, len(columns))
	for i, c := range columns {
		vs[i] = r.values[c]
	}
	return vs
}

// Key returns the primary key value of the record.
func (r *Record) Key() (any, bool) {
	pk := r.table.PrimaryKey
	if pk == nil {
		return nil, false
	}
	v, ok := r.values[pk.Name]
	return v, ok && v != nil
}

// MarkStored records that the record was written, taking the values of
// row (typically the row returned by the insert) and clearing the changes.
func (r *Record) MarkStored(row Row) {
	for i, name := range row.Fields {
		if _, ok := r.table.Column(name); ok {
			r.values[name] = row.Values[i]
		}
	}
	r.changed = nil
	r.stored = true
}

// Row returns the record values as a row, in table order.
func (r *Record) Row() Row {
	cols := r.Columns()
	return NewRow(cols, r.Values(cols))
}

package query

import (
	"context"
	"errors"
	"slices"

	"github.com/syssam/velq"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/record"
	"github.com/syssam/velq/schema"
)

// InsertBuilder builds an insert statement.
type InsertBuilder struct {
	runner    Runner
	into      *expr.Source
	columns   []Column
	rows      [][]any
	set       map[string]int // column name -> position, in Set mode.
	returning []Column
	hasRet    bool
	errs      []error
}

// InsertInto starts an insert into src of the given columns.
func InsertInto(src *expr.Source, cols ...Column) *InsertBuilder {
	return &InsertBuilder{into: src, columns: cols}
}

// Attach binds the builder to a runner used by Execute and the Fetch methods.
func (b *InsertBuilder) Attach(r Runner) *InsertBuilder {
	b.runner = r
	return b
}

// Columns appends columns to the column list.
func (b *InsertBuilder) Columns(cols ...Column) *InsertBuilder {
	if b.set != nil {
		b.errs = append(b.errs, velq.NewBuildError("insert", "Columns cannot be combined with Set"))
	}
	b.columns = append(b.columns, cols...)
	return b
}

// Values adds a row of values, one per column.
func (b *InsertBuilder) Values(vs ...any) *InsertBuilder {
	if b.set != nil {
		b.errs = append(b.errs, velq.NewBuildError("insert", "Values cannot be combined with Set"))
	}
	b.rows = append(b.rows, vs)
	return b
}

// Set sets the value of a column of a single-row insert. Setting a column
// twice keeps the last value.
func (b *InsertBuilder) Set(col Column, v any) *InsertBuilder {
	if b.set == nil {
		if len(b.rows) > 0 || len(b.columns) > 0 {
			b.errs = append(b.errs, velq.NewBuildError("insert", "Set cannot be combined with Columns or Values"))
			return b
		}
		b.set = make(map[string]int)
		b.rows = [][]any{nil}
	}
	if col == nil {
		b.errs = append(b.errs, velq.NewBuildError("insert", "nil column"))
		return b
	}
	name := col.Ref().Name()
	if i, ok := b.set[name]; ok {
		b.rows[0][i] = v
		return b
	}
	b.set[name] = len(b.columns)
	b.columns = append(b.columns, col)
	b.rows[0] = append(b.rows[0], v)
	return b
}

// SetRecord sets the columns of rec that hold a value.
func (b *InsertBuilder) SetRecord(rec *record.Record) *InsertBuilder {
	if err := rec.Err(); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	if b.into != nil && rec.Table() != b.into.Schema() {
		b.errs = append(b.errs, velq.NewBuildError("insert", "record of %s cannot be inserted into %s", rec.Table().Name, b.into.Key()))
		return b
	}
	if b.into == nil {
		return b
	}
	for _, name := range rec.Columns() {
		v, _ := rec.Get(name)
		b.Set(b.into.C(name), v)
	}
	return b
}

// Returning sets the columns returned by Fetch and FetchOne. Without
// columns, all columns are returned.
func (b *InsertBuilder) Returning(cols ...Column) *InsertBuilder {
	b.returning, b.hasRet = cols, true
	return b
}

// InsertStatement is a built insert statement.
type InsertStatement struct {
	into      *expr.Source
	columns   []*schema.Column
	rows      [][]any
	returning []*schema.Column
}

func (*InsertStatement) statement() {}

// Label returns the name of the target table.
func (s *InsertStatement) Label() string { return s.into.Schema().Name }

// Columns returns the names of the inserted columns.
func (s *InsertStatement) Columns() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

func (s *InsertStatement) returningColumns() []*schema.Column { return s.returning }

// Build validates the statement and returns its immutable form.
func (b *InsertBuilder) Build() (*InsertStatement, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	if err := target("insert", b.into); err != nil {
		return nil, err
	}
	s := &InsertStatement{into: b.into}
	seen := make(map[string]bool)
	for _, c := range b.columns {
		col, err := ownColumn("insert", b.into, c)
		if err != nil {
			return nil, err
		}
		if seen[col.Name] {
			return nil, velq.NewBuildError("insert", "column %s listed twice", col.Name)
		}
		seen[col.Name] = true
		s.columns = append(s.columns, col)
	}
	switch {
	case len(b.rows) == 0 && len(s.columns) > 0:
		return nil, velq.NewBuildError("insert", "no values for %d columns", len(s.columns))
	case len(s.columns) == 0 && len(b.rows) > 1:
		return nil, velq.NewBuildError("insert", "a default-values insert has exactly one row")
	}
	for _, row := range b.rows {
		if len(row) != len(s.columns) {
			return nil, velq.NewBuildError("insert", "row has %d values, expected %d", len(row), len(s.columns))
		}
		row = slices.Clone(row)
		for i, v := range row {
			if lit, ok := v.(*expr.Literal); ok {
				v = lit.Value
				row[i] = v
			}
			if _, ok := v.(expr.Expr); ok {
				return nil, velq.NewBuildError("insert", "value of %s must be a literal", s.columns[i].Name)
			}
			if err := checkValue(b.columns[i].Ref(), v); err != nil {
				return nil, err
			}
		}
		s.rows = append(s.rows, row)
	}
	if len(s.rows) == 0 {
		s.rows = [][]any{nil}
	}
	var missing []string
	for _, c := range b.into.Schema().RequiredColumns() {
		if !seen[c.Name] {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &velq.MissingColumnError{Table: b.into.Schema().Name, Columns: missing}
	}
	if b.hasRet {
		var err error
		if s.returning, err = returning("insert", b.into, b.returning); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Query renders the statement for the given dialect.
func (s *InsertStatement) Query(d string) (string, []any, error) {
	return s.render(d, len(s.returning) > 0)
}

func (s *InsertStatement) render(d string, ret bool) (string, []any, error) {
	r := newRenderer(d, "insert", nil)
	r.WriteString("INSERT INTO ").Ident(s.into.Schema().Name)
	switch {
	case len(s.columns) > 0:
		r.Pad().Nested(func(b *sql.Builder) {
			b.Join(len(s.columns), ", ", func(i int) { b.Ident(s.columns[i].Name) })
		})
		r.WriteString(" VALUES ")
		r.Join(len(s.rows), ", ", func(i int) {
			r.Nested(func(b *sql.Builder) { b.Args(s.rows[i]...) })
		})
	case d == dialect.MySQL:
		r.WriteString(" () VALUES ()")
	default:
		r.WriteString(" DEFAULT VALUES")
	}
	if ret && d != dialect.MySQL {
		r.returning(s.returning)
	}
	query, args := r.Query()
	return query, args, r.Err()
}

func (r *renderer) returning(cols []*schema.Column) {
	if len(cols) == 0 {
		return
	}
	r.WriteString(" RETURNING ")
	r.Join(len(cols), ", ", func(i int) { r.Ident(cols[i].Name) })
}

// readBack emulates RETURNING: the row is inserted and selected again by
// its primary key, taken from the inserted values or the last insert id.
func (s *InsertStatement) readBack(ctx context.Context, r Runner) ([]record.Row, error) {
	if len(s.rows) != 1 {
		return nil, velq.NewBuildError("insert", "mysql returns inserted rows for single-row inserts only")
	}
	pk := s.into.Schema().PrimaryKey
	if pk == nil {
		return nil, velq.NewBuildError("insert", "table %s has no primary key to read the inserted row back", s.Label())
	}
	query, args, err := s.render(r.Dialect(), false)
	if err != nil {
		return nil, err
	}
	_, lastID, err := exec(ctx, r, query, args)
	if err != nil {
		return nil, err
	}
	var key any = lastID
	for i, c := range s.columns {
		if c == pk {
			key = s.rows[0][i]
		}
	}
	items := make([]expr.Expr, len(s.returning))
	for i, c := range s.returning {
		items[i] = s.into.C(c.Name)
	}
	sel, err := Select(items...).From(s.into).Where(expr.Compare(expr.OpEQ, s.into.C(pk.Name), expr.Value(key))).Build()
	if err != nil {
		return nil, err
	}
	return sel.fetch(ctx, r, nil, 0)
}

// Execute builds and runs the statement and returns the number of inserted
// rows.
func (b *InsertBuilder) Execute(ctx context.Context) (int64, error) {
	stmt, err := b.Build()
	if err != nil {
		return 0, err
	}
	return Execute(ctx, b.runner, stmt)
}

// Fetch builds and runs the statement and returns the RETURNING rows.
func (b *InsertBuilder) Fetch(ctx context.Context) ([]record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}
	return FetchReturning(ctx, b.runner, stmt)
}

// FetchOne builds and runs a single-row insert and returns its RETURNING row.
func (b *InsertBuilder) FetchOne(ctx context.Context) (record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return record.Row{}, err
	}
	return FetchOneReturning(ctx, b.runner, stmt)
}

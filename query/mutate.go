package query

import (
	"context"
	"slices"

	"github.com/syssam/velq"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/record"
	"github.com/syssam/velq/schema"
)

// Column is implemented by column references, typed or not.
type Column interface {
	Ref() *expr.ColumnRef
}

// mutation is an insert, update or delete statement.
type mutation interface {
	Statement
	// render renders the statement with or without its RETURNING clause.
	render(d string, returning bool) (string, []any, error)
	returningColumns() []*schema.Column
}

// Execute runs an insert, update or delete statement and returns the
// number of affected rows. RETURNING columns are ignored.
func Execute(ctx context.Context, r Runner, stmt Statement) (int64, error) {
	if r == nil {
		return 0, ErrNotAttached
	}
	m, ok := stmt.(mutation)
	if !ok {
		return 0, velq.NewBuildError("execute", "%T is not an insert, update or delete statement", stmt)
	}
	query, args, err := m.render(r.Dialect(), false)
	if err != nil {
		return 0, err
	}
	n, _, err := exec(ctx, r, query, args)
	return n, err
}

// FetchReturning runs an insert, update or delete statement and returns its
// RETURNING rows. MySQL has no RETURNING clause: single-row inserts are
// read back by primary key, other statements fail.
func FetchReturning(ctx context.Context, r Runner, stmt Statement) ([]record.Row, error) {
	if r == nil {
		return nil, ErrNotAttached
	}
	m, ok := stmt.(mutation)
	if !ok {
		return nil, velq.NewBuildError("fetch", "%T is not an insert, update or delete statement", stmt)
	}
	cols := m.returningColumns()
	if len(cols) == 0 {
		return nil, velq.NewBuildError("fetch", "%s statement has no RETURNING columns", m.Label())
	}
	if r.Dialect() == dialect.MySQL {
		ins, ok := m.(*InsertStatement)
		if !ok {
			return nil, velq.NewBuildError("fetch", "mysql does not support RETURNING for update and delete statements")
		}
		return ins.readBack(ctx, r)
	}
	query, args, err := m.render(r.Dialect(), true)
	if err != nil {
		return nil, err
	}
	raw, err := queryValues(ctx, r, query, args, len(cols), 0)
	if err != nil {
		return nil, err
	}
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Name
	}
	rows := make([]record.Row, len(raw))
	for i, vs := range raw {
		for j, c := range cols {
			if vs[j], err = normalize(c.Type, c.Name, vs[j]); err != nil {
				return nil, err
			}
		}
		rows[i] = record.NewRow(fields, vs)
	}
	return rows, nil
}

// FetchOneReturning is like FetchReturning for statements that affect
// exactly one row.
func FetchOneReturning(ctx context.Context, r Runner, stmt Statement) (record.Row, error) {
	rows, err := FetchReturning(ctx, r, stmt)
	if err != nil {
		return record.Row{}, err
	}
	row, ok, err := one(stmt.Label(), rows)
	switch {
	case err != nil:
		return record.Row{}, err
	case !ok:
		return record.Row{}, velq.NewNoResultError(stmt.Label())
	}
	return row, nil
}

// target checks that src can be the table of a mutation.
func target(stmt string, src *expr.Source) error {
	if src == nil {
		return velq.NewBuildError(stmt, "nil table")
	}
	if err := src.Err(); err != nil {
		return err
	}
	if src.IsPath() {
		return velq.NewBuildError(stmt, "navigation path %s cannot be modified", src.Key())
	}
	return nil
}

// ownColumn returns the schema column of ref, which must be a column of src.
func ownColumn(stmt string, src *expr.Source, c Column) (*schema.Column, error) {
	if c == nil {
		return nil, velq.NewBuildError(stmt, "nil column")
	}
	ref := c.Ref()
	if err := ref.Err(); err != nil {
		return nil, err
	}
	if ref.Source().IsPath() || ref.Source().Key() != src.Key() || ref.Column().Table != src.Schema() {
		return nil, velq.NewBuildError(stmt, "%s is not a column of %s", ref, src.Key())
	}
	return ref.Column(), nil
}

// returning resolves the RETURNING columns; none means all columns.
func returning(stmt string, src *expr.Source, cols []Column) ([]*schema.Column, error) {
	if len(cols) == 0 {
		return src.Schema().Columns, nil
	}
	out := make([]*schema.Column, 0, len(cols))
	for _, c := range cols {
		col, err := ownColumn(stmt, src, c)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, nil
}

// checkValue checks that v may be written to the column. Expressions are
// checked by local.
func checkValue(ref *expr.ColumnRef, v any) error {
	if v == nil && ref.Column().Nullable {
		return nil
	}
	return ref.Check(v)
}

// local checks that every column of x belongs to src.
func local(stmt string, src *expr.Source, x expr.Expr) error {
	if err := x.Err(); err != nil {
		return err
	}
	refs, err := expr.Columns(x)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		switch root := ref.Source().Root(); {
		case root.Key() != src.Key() || root.Schema() != src.Schema():
			return &velq.UnboundColumnError{Column: ref.String(), Source: root.Key()}
		case ref.Source().IsPath():
			return velq.NewBuildError(stmt, "%s: navigation is not supported in %s statements", ref, stmt)
		}
	}
	if slices.ContainsFunc(kinds(x), func(k expr.Kind) bool { return k == expr.KindNested || k == expr.KindFunc }) {
		return velq.NewBuildError(stmt, "aggregates and multisets are not supported in %s statements", stmt)
	}
	return nil
}

func kinds(x expr.Expr) []expr.Kind {
	var ks []expr.Kind
	_ = expr.Walk(x, func(e expr.Expr) bool {
		ks = append(ks, e.Kind())
		return true
	})
	return ks
}

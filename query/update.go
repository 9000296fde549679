package query

import (
	"context"
	"errors"

	"github.com/syssam/velq"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/record"
	"github.com/syssam/velq/schema"
)

// UpdateBuilder builds an update statement.
type UpdateBuilder struct {
	runner    Runner
	table     *expr.Source
	sets      []assignment
	where     []expr.Expr
	returning []Column
	hasRet    bool
	errs      []error
}

type assignment struct {
	col   Column
	value any // literal or expr.Expr of the same table.
}

// Update starts an update of src.
func Update(src *expr.Source) *UpdateBuilder {
	return &UpdateBuilder{table: src}
}

// Attach binds the builder to a runner used by Execute and the Fetch methods.
func (b *UpdateBuilder) Attach(r Runner) *UpdateBuilder {
	b.runner = r
	return b
}

// Set assigns v to a column. v is a literal or an expression over the
// columns of the updated table.
func (b *UpdateBuilder) Set(col Column, v any) *UpdateBuilder {
	if col == nil {
		b.errs = append(b.errs, velq.NewBuildError("update", "nil column"))
		return b
	}
	if x, ok := v.(expr.Expr); ok {
		v = expr.Unwrap(x)
	}
	b.sets = append(b.sets, assignment{col: col, value: v})
	return b
}

// Where adds predicates, combined with AND. An update without predicates
// affects all rows.
func (b *UpdateBuilder) Where(preds ...expr.Expr) *UpdateBuilder {
	b.where = append(b.where, preds...)
	return b
}

// Returning sets the columns returned by Fetch and FetchOne. Without
// columns, all columns are returned.
func (b *UpdateBuilder) Returning(cols ...Column) *UpdateBuilder {
	b.returning, b.hasRet = cols, true
	return b
}

// UpdateStatement is a built update statement.
type UpdateStatement struct {
	table     *expr.Source
	columns   []*schema.Column
	values    []any
	where     expr.Expr
	returning []*schema.Column
}

func (*UpdateStatement) statement() {}

// Label returns the name of the updated table.
func (s *UpdateStatement) Label() string { return s.table.Schema().Name }

func (s *UpdateStatement) returningColumns() []*schema.Column { return s.returning }

// Build validates the statement and returns its immutable form.
func (b *UpdateBuilder) Build() (*UpdateStatement, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	if err := target("update", b.table); err != nil {
		return nil, err
	}
	if len(b.sets) == 0 {
		return nil, velq.NewBuildError("update", "no columns to set")
	}
	s := &UpdateStatement{table: b.table}
	for _, a := range b.sets {
		col, err := ownColumn("update", b.table, a.col)
		if err != nil {
			return nil, err
		}
		v := a.value
		if lit, ok := v.(*expr.Literal); ok {
			v = lit.Value
		}
		if x, ok := v.(expr.Expr); ok {
			if err := local("update", b.table, x); err != nil {
				return nil, err
			}
			if t, ok := x.(expr.Typed); ok && !t.Type().Comparable(col.Type) {
				return nil, &velq.TypeMismatchError{Column: col.String(), Expected: col.Type.String(), Got: t.Type().String()}
			}
		} else if err := checkValue(a.col.Ref(), v); err != nil {
			return nil, err
		}
		s.columns = append(s.columns, col)
		s.values = append(s.values, v)
	}
	var err error
	if s.where, err = mutationWhere("update", b.table, b.where); err != nil {
		return nil, err
	}
	if b.hasRet {
		if s.returning, err = returning("update", b.table, b.returning); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func mutationWhere(stmt string, src *expr.Source, preds []expr.Expr) (expr.Expr, error) {
	if len(preds) == 0 {
		return nil, nil
	}
	var where expr.Expr = expr.And(preds...)
	if len(preds) == 1 {
		where = expr.Unwrap(preds[0])
		if where == nil {
			return nil, velq.NewBuildError(stmt, "nil predicate")
		}
	}
	if err := local(stmt, src, where); err != nil {
		return nil, err
	}
	return where, nil
}

// Query renders the statement for the given dialect.
func (s *UpdateStatement) Query(d string) (string, []any, error) {
	return s.render(d, len(s.returning) > 0)
}

func (s *UpdateStatement) render(d string, ret bool) (string, []any, error) {
	r := newRenderer(d, "update", nil)
	r.local[s.table.Key()] = true
	r.WriteString("UPDATE ")
	r.table(s.table)
	r.WriteString(" SET ")
	r.Join(len(s.columns), ", ", func(i int) {
		r.Ident(s.columns[i].Name).WriteString(" = ")
		if x, ok := s.values[i].(expr.Expr); ok {
			r.expr(x)
		} else {
			r.Arg(s.values[i])
		}
	})
	if s.where != nil {
		r.WriteString(" WHERE ")
		r.expr(s.where)
	}
	if ret {
		r.returning(s.returning)
	}
	query, args := r.Query()
	return query, args, r.Err()
}

// Execute builds and runs the statement and returns the number of updated
// rows.
func (b *UpdateBuilder) Execute(ctx context.Context) (int64, error) {
	stmt, err := b.Build()
	if err != nil {
		return 0, err
	}
	return Execute(ctx, b.runner, stmt)
}

// Fetch builds and runs the statement and returns the RETURNING rows.
func (b *UpdateBuilder) Fetch(ctx context.Context) ([]record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}
	return FetchReturning(ctx, b.runner, stmt)
}

// FetchOne builds and runs the statement and returns its only RETURNING row.
func (b *UpdateBuilder) FetchOne(ctx context.Context) (record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return record.Row{}, err
	}
	return FetchOneReturning(ctx, b.runner, stmt)
}

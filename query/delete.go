package query

import (
	"context"

	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/record"
	"github.com/syssam/velq/schema"
)

// DeleteBuilder builds a delete statement.
type DeleteBuilder struct {
	runner    Runner
	table     *expr.Source
	where     []expr.Expr
	returning []Column
	hasRet    bool
}

// DeleteFrom starts a delete from src.
func DeleteFrom(src *expr.Source) *DeleteBuilder {
	return &DeleteBuilder{table: src}
}

// Attach binds the builder to a runner used by Execute and the Fetch methods.
func (b *DeleteBuilder) Attach(r Runner) *DeleteBuilder {
	b.runner = r
	return b
}

// Where adds predicates, combined with AND. A delete without predicates
// removes all rows.
func (b *DeleteBuilder) Where(preds ...expr.Expr) *DeleteBuilder {
	b.where = append(b.where, preds...)
	return b
}

// Returning sets the columns returned by Fetch and FetchOne. Without
// columns, all columns are returned.
func (b *DeleteBuilder) Returning(cols ...Column) *DeleteBuilder {
	b.returning, b.hasRet = cols, true
	return b
}

// DeleteStatement is a built delete statement.
type DeleteStatement struct {
	table     *expr.Source
	where     expr.Expr
	returning []*schema.Column
}

func (*DeleteStatement) statement() {}

// Label returns the name of the table rows are deleted from.
func (s *DeleteStatement) Label() string { return s.table.Schema().Name }

func (s *DeleteStatement) returningColumns() []*schema.Column { return s.returning }

// Build validates the statement and returns its immutable form.
func (b *DeleteBuilder) Build() (*DeleteStatement, error) {
	if err := target("delete", b.table); err != nil {
		return nil, err
	}
	s := &DeleteStatement{table: b.table}
	var err error
	if s.where, err = mutationWhere("delete", b.table, b.where); err != nil {
		return nil, err
	}
	if b.hasRet {
		if s.returning, err = returning("delete", b.table, b.returning); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Query renders the statement for the given dialect.
func (s *DeleteStatement) Query(d string) (string, []any, error) {
	return s.render(d, len(s.returning) > 0)
}

func (s *DeleteStatement) render(d string, ret bool) (string, []any, error) {
	r := newRenderer(d, "delete", nil)
	r.local[s.table.Key()] = true
	r.WriteString("DELETE FROM ")
	r.table(s.table)
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

// Execute builds and runs the statement and returns the number of deleted
// rows.
func (b *DeleteBuilder) Execute(ctx context.Context) (int64, error) {
	stmt, err := b.Build()
	if err != nil {
		return 0, err
	}
	return Execute(ctx, b.runner, stmt)
}

// Fetch builds and runs the statement and returns the RETURNING rows.
func (b *DeleteBuilder) Fetch(ctx context.Context) ([]record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}
	return FetchReturning(ctx, b.runner, stmt)
}

// FetchOne builds and runs the statement and returns its only RETURNING row.
func (b *DeleteBuilder) FetchOne(ctx context.Context) (record.Row, error) {
	stmt, err := b.Build()
	if err != nil {
		return record.Row{}, err
	}
	return FetchOneReturning(ctx, b.runner, stmt)
}

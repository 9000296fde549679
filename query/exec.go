package query

import (
	"context"
	"errors"

	"github.com/syssam/velq"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/dialect/sql/sqlerr"
	"github.com/syssam/velq/record"
	"github.com/syssam/velq/schema/field"
)

// Runner runs rendered statements. *sql.Driver, *sql.Tx and the client
// implement it.
type Runner interface {
	dialect.ExecQuerier
	// Dialect returns the dialect statements are rendered for.
	Dialect() string
}

// Statement is a built, immutable statement.
type Statement interface {
	// Query renders the statement for the given dialect.
	Query(dialect string) (string, []any, error)
	// Label names the statement target in errors.
	Label() string
	statement()
}

// ErrNotAttached is returned when a builder without a runner is executed.
var ErrNotAttached = errors.New("velq: statement is not attached to a runner")

// Fetch runs a select statement and returns all rows. Multisets are
// loaded with one query per outer row, after the outer rows are read.
func Fetch(ctx context.Context, r Runner, s *SelectStatement) ([]record.Row, error) {
	if r == nil {
		return nil, ErrNotAttached
	}
	return s.fetch(ctx, r, nil, 0)
}

// FetchOne runs a select statement that must return exactly one row. At
// most two rows are read, so the count of a TooManyResultsError is unknown.
func FetchOne(ctx context.Context, r Runner, s *SelectStatement) (record.Row, error) {
	row, ok, err := FetchOptional(ctx, r, s)
	switch {
	case err != nil:
		return record.Row{}, err
	case !ok:
		return record.Row{}, velq.NewNoResultError(s.Label())
	}
	return row, nil
}

// FetchOptional runs a select statement that returns at most one row.
func FetchOptional(ctx context.Context, r Runner, s *SelectStatement) (record.Row, bool, error) {
	if r == nil {
		return record.Row{}, false, ErrNotAttached
	}
	rows, err := s.fetch(ctx, r, nil, 2)
	if err != nil {
		return record.Row{}, false, err
	}
	return one(s.Label(), rows)
}

func one(label string, rows []record.Row) (record.Row, bool, error) {
	switch len(rows) {
	case 0:
		return record.Row{}, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return record.Row{}, false, velq.NewTooManyResultsError(label)
	}
}

// width returns the number of values a row of the rendered statement has.
func (s *SelectStatement) width() int {
	n := len(s.hidden)
	for _, p := range s.items {
		if p.nested == nil {
			n++
		}
	}
	return max(n, 1)
}

func (s *SelectStatement) fetch(ctx context.Context, r Runner, bind map[string]any, limit int) ([]record.Row, error) {
	query, args, err := s.render(r.Dialect(), bind)
	if err != nil {
		return nil, err
	}
	raw, err := queryValues(ctx, r, query, args, s.width(), limit)
	if err != nil {
		return nil, err
	}
	fields := s.Fields()
	rows := make([]record.Row, 0, len(raw))
	for _, vs := range raw {
		row := record.Row{Fields: fields, Values: make([]any, len(s.items))}
		i := 0
		for j, p := range s.items {
			if p.nested != nil {
				continue
			}
			if row.Values[j], err = normalize(p.typ, p.name, vs[i]); err != nil {
				return nil, err
			}
			i++
		}
		hidden := make(map[string]any, len(s.hidden))
		for _, h := range s.hidden {
			if hidden[h.String()], err = normalize(h.Type(), h.Name(), vs[i]); err != nil {
				return nil, err
			}
			i++
		}
		for j, p := range s.items {
			if p.nested == nil {
				continue
			}
			inner := make(map[string]any, len(p.nested.outer))
			for _, ref := range p.nested.outer {
				inner[ref.String()] = hidden[ref.String()]
			}
			if row.Values[j], err = p.nested.fetch(ctx, r, inner, 0); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// queryValues runs a query and reads up to limit rows of width values.
// A limit of zero reads all rows. Rows are closed before returning, so
// nested queries can run on the same connection.
func queryValues(ctx context.Context, r Runner, query string, args []any, width, limit int) (_ [][]any, err error) {
	rows := &sql.Rows{}
	if err := r.Query(ctx, query, args, rows); err != nil {
		return nil, dbError("query", query, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = dbError("query", query, cerr)
		}
	}()
	var out [][]any
	for rows.Next() {
		vs, err := sql.ScanValues(rows, width)
		if err != nil {
			return nil, dbError("scan", query, err)
		}
		out = append(out, vs)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("query", query, err)
	}
	return out, nil
}

// exec runs a statement and returns the number of affected rows and the
// last insert id, when the driver reports one.
func exec(ctx context.Context, r Runner, query string, args []any) (affected int64, lastID int64, err error) {
	var res sql.Result
	if err := r.Exec(ctx, query, args, &res); err != nil {
		return 0, 0, dbError("exec", query, err)
	}
	if affected, err = res.RowsAffected(); err != nil {
		return 0, 0, dbError("exec", query, err)
	}
	lastID, _ = res.LastInsertId()
	return affected, lastID, nil
}

func dbError(op, query string, err error) error {
	return &velq.DatabaseError{Op: op, Query: query, Constraint: string(sqlerr.Classify(err)), Err: err}
}

// normalize converts a scanned value to the Go type of the column type.
func normalize(t field.Type, name string, v any) (any, error) {
	if !t.Valid() {
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return v, nil
	}
	nv, err := t.Normalize(v)
	if err != nil {
		return nil, &velq.MappingError{Type: t.String(), Field: name, Err: err}
	}
	return nv, nil
}

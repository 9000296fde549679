package query

import (
	"github.com/syssam/velq"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/expr"
)

// renderer writes expressions of one statement. Columns whose root alias
// is not local are correlated and written as arguments from bind.
type renderer struct {
	*sql.Builder
	stmt  string
	local map[string]bool
	bind  map[string]any
}

func newRenderer(d, stmt string, bind map[string]any) *renderer {
	return &renderer{Builder: sql.Dialect(d), stmt: stmt, local: make(map[string]bool), bind: bind}
}

func (r *renderer) errorf(format string, args ...any) {
	r.AddError(velq.NewBuildError(r.stmt, format, args...))
}

// table writes a table reference with its alias, when it differs from the
// table name.
func (r *renderer) table(src *expr.Source) {
	r.Ident(src.Schema().Name)
	if alias := src.Alias(); alias != src.Schema().Name {
		r.WriteString(" AS ").Ident(alias)
	}
}

func (r *renderer) expr(x expr.Expr) {
	switch x := x.(type) {
	case *expr.ColumnRef:
		r.column(x)
	case *expr.Literal:
		r.Arg(x.Value)
	case *expr.Comparison:
		r.operand(x.Left)
		r.Pad().WriteString(string(x.Op)).Pad()
		r.operand(x.Right)
	case *expr.Logical:
		r.logical(x)
	case *expr.NotExpr:
		r.WriteString("NOT ").Nested(func(*sql.Builder) { r.expr(x.X) })
	case *expr.Null:
		r.operand(x.X)
		if x.Not {
			r.WriteString(" IS NOT NULL")
		} else {
			r.WriteString(" IS NULL")
		}
	case *expr.In:
		switch {
		case len(x.Values) == 0 && x.Not:
			r.WriteString("1 = 1")
		case len(x.Values) == 0:
			r.WriteString("1 = 0")
		default:
			r.operand(x.X)
			if x.Not {
				r.WriteString(" NOT")
			}
			r.WriteString(" IN ").Nested(func(b *sql.Builder) { b.Args(x.Values...) })
		}
	case *expr.Func:
		r.WriteString(x.Name).Nested(func(*sql.Builder) {
			if len(x.Args) == 0 {
				r.WriteByte('*')
				return
			}
			if x.Distinct {
				r.WriteString("DISTINCT ")
			}
			r.Join(len(x.Args), ", ", func(i int) { r.expr(x.Args[i]) })
		})
	case *expr.Alias:
		r.expr(x.X)
	case *expr.Nested:
		r.errorf("multiset can only be used as a projection")
	default:
		r.errorf("unexpected expression %T", x)
	}
}

// operand writes a comparison operand, parenthesizing boolean operands.
func (r *renderer) operand(x expr.Expr) {
	switch x.(type) {
	case *expr.Logical, *expr.Comparison:
		r.Nested(func(*sql.Builder) { r.expr(x) })
	default:
		r.expr(x)
	}
}

func (r *renderer) logical(l *expr.Logical) {
	switch len(l.Operands) {
	case 0:
		if l.Op == expr.OpAnd {
			r.WriteString("1 = 1")
		} else {
			r.WriteString("1 = 0")
		}
		return
	case 1:
		r.expr(l.Operands[0])
		return
	}
	r.Join(len(l.Operands), " "+string(l.Op)+" ", func(i int) {
		if op, ok := l.Operands[i].(*expr.Logical); ok && len(op.Operands) > 1 {
			r.Nested(func(*sql.Builder) { r.logical(op) })
			return
		}
		r.expr(l.Operands[i])
	})
}

func (r *renderer) column(c *expr.ColumnRef) {
	if root := c.Source().Root().Key(); !r.local[root] {
		v, ok := r.bind[c.String()]
		if !ok {
			r.errorf("correlated column %s has no value; the statement must run as a multiset", c)
			return
		}
		r.Arg(v)
		return
	}
	r.Qualified(c.Source().Alias(), c.Name())
}

// Query renders the statement for the given dialect. Statements with
// correlated columns only render as part of their enclosing statement.
func (s *SelectStatement) Query(d string) (string, []any, error) {
	return s.render(d, nil)
}

func (s *SelectStatement) render(d string, bind map[string]any) (string, []any, error) {
	r := newRenderer(d, "select", bind)
	r.local[s.from.Key()] = true
	for _, j := range s.joins {
		r.local[j.Source.Root().Key()] = true
	}
	r.WriteString("SELECT ")
	if s.distinct {
		r.WriteString("DISTINCT ")
	}
	n := 0
	sep := func() {
		if n > 0 {
			r.WriteString(", ")
		}
		n++
	}
	for _, p := range s.items {
		if p.nested != nil {
			continue
		}
		sep()
		r.expr(p.x)
		if p.alias != "" {
			r.WriteString(" AS ").Ident(p.alias)
		}
	}
	for _, h := range s.hidden {
		sep()
		r.column(h)
	}
	if n == 0 {
		r.WriteByte('1')
	}
	r.WriteString(" FROM ")
	r.table(s.from)
	for _, j := range s.joins {
		r.Pad().WriteString(string(j.Type)).Pad()
		r.table(j.Source)
		r.WriteString(" ON ")
		r.expr(j.On)
	}
	if s.where != nil {
		r.WriteString(" WHERE ")
		r.expr(s.where)
	}
	if len(s.groupBy) > 0 {
		r.WriteString(" GROUP BY ")
		r.Join(len(s.groupBy), ", ", func(i int) { r.expr(s.groupBy[i]) })
	}
	if s.having != nil {
		r.WriteString(" HAVING ")
		r.expr(s.having)
	}
	if len(s.orderBy) > 0 {
		r.WriteString(" ORDER BY ")
		r.Join(len(s.orderBy), ", ", func(i int) {
			o := s.orderBy[i]
			if a, ok := o.X.(*expr.Alias); ok {
				r.Ident(a.Name)
			} else {
				r.expr(o.X)
			}
			if o.Desc {
				r.WriteString(" DESC")
			}
		})
	}
	r.limit(s.limit, s.offset)
	if err := r.Err(); err != nil {
		return "", nil, err
	}
	query, args := r.Query()
	return query, args, nil
}

// maxRows is the LIMIT written for an OFFSET without a limit, in dialects
// that do not accept OFFSET alone.
var maxRows = map[string]string{
	dialect.MySQL:  "18446744073709551615",
	dialect.SQLite: "-1",
}

func (r *renderer) limit(limit, offset *int) {
	if limit != nil {
		r.WriteString(" LIMIT ").Arg(*limit)
	} else if offset != nil {
		if all, ok := maxRows[r.Dialect()]; ok {
			r.WriteString(" LIMIT ").WriteString(all)
		}
	}
	if offset != nil {
		r.WriteString(" OFFSET ").Arg(*offset)
	}
}

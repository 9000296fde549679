package expr

import (
	"errors"
	"fmt"

	"github.com/syssam/velq"
	"github.com/syssam/velq/schema/field"
)

// Kind identifies the node type of an expression.
type Kind uint8

// Expression kinds. The set is closed: every consumer switches over it
// exhaustively and rejects anything else.
const (
	KindInvalid Kind = iota
	KindColumn
	KindLiteral
	KindComparison
	KindLogical
	KindNot
	KindNull
	KindIn
	KindFunc
	KindAlias
	KindNested
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindColumn:     "column",
	KindLiteral:    "literal",
	KindComparison: "comparison",
	KindLogical:    "logical",
	KindNot:        "not",
	KindNull:       "null",
	KindIn:         "in",
	KindFunc:       "func",
	KindAlias:      "alias",
	KindNested:     "nested",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInvalid]
}

// Expr is an immutable expression node. Only types of this package
// implement it.
type Expr interface {
	// Kind returns the node kind.
	Kind() Kind
	// Err returns the first error found while constructing the node or any
	// of its operands. Errors are reported when the statement is built.
	Err() error

	sealed()
}

// Typed is implemented by expressions whose column type is known.
type Typed interface {
	Expr
	Type() field.Type
}

// Op is a comparison operator.
type Op string

// Comparison operators.
const (
	OpEQ   Op = "="
	OpNEQ  Op = "<>"
	OpLT   Op = "<"
	OpLTE  Op = "<="
	OpGT   Op = ">"
	OpGTE  Op = ">="
	OpLike Op = "LIKE"
)

// Literal is a value bound as a query parameter.
type Literal struct {
	Value any
}

// Value returns a literal expression. Literals are never interpolated into
// the query text.
func Value(v any) *Literal { return &Literal{Value: v} }

func (*Literal) Kind() Kind { return KindLiteral }
func (*Literal) Err() error { return nil }
func (*Literal) sealed() {}

// Comparison compares two operands.
type Comparison struct {
	Op    Op
	Left  Expr
	Right Expr
	err   error
}

func (*Comparison) Kind() Kind { return KindComparison }
func (c *Comparison) Err() error { return c.err }
func (*Comparison) sealed() {}

// Compare returns the comparison of two expressions. Typed operands must
// have comparable types.
func Compare(op Op, l, r Expr) *Comparison {
	l, r = Unwrap(l), Unwrap(r)
	c := &Comparison{Op: op, Left: l, Right: r}
	c.err = firstErr(l, r)
	if c.err == nil {
		c.err = checkComparable(l, r)
	}
	return c
}

func checkComparable(l, r Expr) error {
	lt, lok := l.(Typed)
	rt, rok := r.(Typed)
	if lit, ok := r.(*Literal); ok && lok {
		return checkLiteral(l, lt, lit)
	}
	if lit, ok := l.(*Literal); ok && rok {
		return checkLiteral(r, rt, lit)
	}
	if !lok || !rok {
		return nil
	}
	if !lt.Type().Comparable(rt.Type()) {
		return &velq.TypeMismatchError{
			Column:   describe(l),
			Expected: lt.Type().String(),
			Got:      fmt.Sprintf("%s (%s)", describe(r), rt.Type()),
		}
	}
	return nil
}

// checkLiteral checks a literal compared with a typed operand.
func checkLiteral(x Expr, t Typed, lit *Literal) error {
	if c, ok := x.(*ColumnRef); ok {
		return c.Check(lit.Value)
	}
	if !t.Type().Accepts(lit.Value) {
		return &velq.TypeMismatchError{Column: describe(x), Expected: t.Type().String(), Got: fmt.Sprintf("%T", lit.Value)}
	}
	return nil
}

// LogicalOp is a boolean combinator.
type LogicalOp string

// Boolean combinators.
const (
	OpAnd LogicalOp = "AND"
	OpOr  LogicalOp = "OR"
)

// Logical combines boolean operands with AND or OR.
type Logical struct {
	Op       LogicalOp
	Operands []Expr
	err      error
}

func (*Logical) Kind() Kind { return KindLogical }
func (l *Logical) Err() error { return l.err }
func (*Logical) sealed() {}

// And returns the conjunction of the given predicates. Nested conjunctions
// are flattened, so And(a, And(b, c)) equals And(And(a, b), c).
func And(preds ...Expr) *Logical { return combine(OpAnd, preds) }

// Or returns the disjunction of the given predicates, flattened like And.
func Or(preds ...Expr) *Logical { return combine(OpOr, preds) }

func combine(op LogicalOp, preds []Expr) *Logical {
	l := &Logical{Op: op, Operands: make([]Expr, 0, len(preds))}
	for _, p := range preds {
		if p == nil {
			l.err = errors.Join(l.err, fmt.Errorf("velq: nil operand in %s", op))
			continue
		}
		p = Unwrap(p)
		if inner, ok := p.(*Logical); ok && inner.Op == op {
			l.Operands = append(l.Operands, inner.Operands...)
		} else {
			l.Operands = append(l.Operands, p)
		}
		if err := p.Err(); err != nil && l.err == nil {
			l.err = err
		}
	}
	return l
}

// NotExpr negates a predicate.
type NotExpr struct {
	X Expr
}

// Not returns the negation of a predicate.
func Not(x Expr) *NotExpr { return &NotExpr{X: Unwrap(x)} }

func (*NotExpr) Kind() Kind { return KindNot }
func (n *NotExpr) Err() error { return firstErr(n.X) }
func (*NotExpr) sealed() {}

// Null tests an operand for NULL.
type Null struct {
	X   Expr
	Not bool // IS NOT NULL
}

func (*Null) Kind() Kind { return KindNull }
func (n *Null) Err() error { return firstErr(n.X) }
func (*Null) sealed() {}

// In tests an operand for membership in a list of values.
type In struct {
	X      Expr
	Values []any
	Not    bool // NOT IN
	err    error
}

func (*In) Kind() Kind { return KindIn }
func (i *In) Err() error { return i.err }
func (*In) sealed() {}

// Func is an aggregate function call.
type Func struct {
	Name     string // COUNT
	Args     []Expr // nil means *
	Distinct bool
}

// Count returns COUNT(x).
func Count(x Expr) *Func { return &Func{Name: "COUNT", Args: []Expr{Unwrap(x)}} }

// CountDistinct returns COUNT(DISTINCT x).
func CountDistinct(x Expr) *Func { return &Func{Name: "COUNT", Args: []Expr{Unwrap(x)}, Distinct: true} }

// CountAll returns COUNT(*).
func CountAll() *Func { return &Func{Name: "COUNT"} }

func (*Func) Kind() Kind { return KindFunc }
func (f *Func) Err() error { return firstErr(f.Args...) }
func (*Func) Type() field.Type { return field.TypeInt64 }
func (*Func) sealed() {}

// EQ returns a predicate that checks if the function result equals v.
func (f *Func) EQ(v int64) *Comparison { return Compare(OpEQ, f, Value(v)) }

// GT returns a predicate that checks if the function result is greater than v.
func (f *Func) GT(v int64) *Comparison { return Compare(OpGT, f, Value(v)) }

// GTE returns a predicate that checks if the function result is at least v.
func (f *Func) GTE(v int64) *Comparison { return Compare(OpGTE, f, Value(v)) }

// LT returns a predicate that checks if the function result is less than v.
func (f *Func) LT(v int64) *Comparison { return Compare(OpLT, f, Value(v)) }

// LTE returns a predicate that checks if the function result is at most v.
func (f *Func) LTE(v int64) *Comparison { return Compare(OpLTE, f, Value(v)) }

// As returns the function call under an alias.
func (f *Func) As(name string) *Alias { return As(f, name) }

// Alias names a projected expression.
type Alias struct {
	X    Expr
	Name string
}

// As returns x under the given alias.
func As(x Expr, name string) *Alias { return &Alias{X: Unwrap(x), Name: name} }

func (*Alias) Kind() Kind { return KindAlias }
func (a *Alias) Err() error {
	if a.Name == "" {
		return errors.New("velq: empty alias")
	}
	return firstErr(a.X)
}
func (*Alias) sealed() {}

// Subquery is a nested select. It is implemented by the query package.
type Subquery interface {
	Err() error
}

// Nested is a multiset projection: a correlated sub-select whose rows are
// collected per outer row.
type Nested struct {
	Query Subquery
}

// Nest returns a nested projection of q.
func Nest(q Subquery) *Nested { return &Nested{Query: q} }

func (*Nested) Kind() Kind { return KindNested }
func (n *Nested) Err() error {
	if n.Query == nil {
		return errors.New("velq: nil nested query")
	}
	return n.Query.Err()
}
func (*Nested) sealed() {}

// As returns the nested projection under an alias.
func (n *Nested) As(name string) *Alias { return As(n, name) }

// Ordering is an ORDER BY term.
type Ordering struct {
	X    Expr
	Desc bool
}

// Orderer is implemented by values that can appear in ORDER BY.
type Orderer interface {
	Ordering() Ordering
}

// Ordering implements Orderer.
func (o Ordering) Ordering() Ordering { return o }

// Asc returns an ascending ordering of x.
func Asc(x Expr) Ordering { return Ordering{X: Unwrap(x)} }

// Desc returns a descending ordering of x.
func Desc(x Expr) Ordering { return Ordering{X: Unwrap(x), Desc: true} }

// Unwrap returns the underlying node of x. Typed fields unwrap to their
// *ColumnRef; all other expressions are returned as is.
func Unwrap(x Expr) Expr {
	if r, ok := x.(interface{ Ref() *ColumnRef }); ok {
		if ref := r.Ref(); ref != nil {
			return ref
		}
	}
	return x
}

func firstErr(xs ...Expr) error {
	for _, x := range xs {
		if x == nil {
			return errors.New("velq: nil expression")
		}
		if err := x.Err(); err != nil {
			return err
		}
	}
	return nil
}

func describe(x Expr) string {
	if c, ok := x.(*ColumnRef); ok {
		return c.String()
	}
	return x.Kind().String()
}

var (
	_ Expr  = (*Literal)(nil)
	_ Expr  = (*Comparison)(nil)
	_ Expr  = (*Logical)(nil)
	_ Expr  = (*NotExpr)(nil)
	_ Expr  = (*Null)(nil)
	_ Expr  = (*In)(nil)
	_ Typed = (*Func)(nil)
	_ Expr  = (*Alias)(nil)
	_ Expr  = (*Nested)(nil)
)

package expr

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/syssam/velq"
	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/field"
)

// ColumnRef references a column of a source.
type ColumnRef struct {
	src  *Source
	col  *schema.Column
	name string
	err  error
}

func (*ColumnRef) Kind() Kind { return KindColumn }
func (c *ColumnRef) Err() error { return c.err }
func (*ColumnRef) sealed() {}

// Ref returns the untyped column reference. It is promoted to Field.
func (c *ColumnRef) Ref() *ColumnRef { return c }

// Source returns the source the column belongs to.
func (c *ColumnRef) Source() *Source { return c.src }

// Column returns the schema column, nil if the reference is invalid.
func (c *ColumnRef) Column() *schema.Column { return c.col }

// Name returns the column name.
func (c *ColumnRef) Name() string { return c.name }

// Type returns the column type.
func (c *ColumnRef) Type() field.Type {
	if c.col == nil {
		return field.TypeInvalid
	}
	return c.col.Type
}

// String returns the column qualified by its source key.
func (c *ColumnRef) String() string {
	return c.src.Key() + "." + c.name
}

// EQ returns a predicate that checks if the column equals v. v is either
// an expression or a literal value of the column type.
func (c *ColumnRef) EQ(v any) *Comparison { return c.compare(OpEQ, v) }

// NEQ returns a predicate that checks if the column does not equal v.
func (c *ColumnRef) NEQ(v any) *Comparison { return c.compare(OpNEQ, v) }

// GT returns a predicate that checks if the column is greater than v.
func (c *ColumnRef) GT(v any) *Comparison { return c.compare(OpGT, v) }

// GTE returns a predicate that checks if the column is greater than or equal to v.
func (c *ColumnRef) GTE(v any) *Comparison { return c.compare(OpGTE, v) }

// LT returns a predicate that checks if the column is less than v.
func (c *ColumnRef) LT(v any) *Comparison { return c.compare(OpLT, v) }

// LTE returns a predicate that checks if the column is less than or equal to v.
func (c *ColumnRef) LTE(v any) *Comparison { return c.compare(OpLTE, v) }

// Like returns a predicate that matches a string column against a pattern.
func (c *ColumnRef) Like(pattern string) *Comparison {
	cmp := c.compare(OpLike, pattern)
	if cmp.err == nil && c.Type() != field.TypeString {
		cmp.err = c.mismatch(field.TypeString.String())
	}
	return cmp
}

// In returns a predicate that checks if the column value is in vs.
// An empty list matches no rows.
func (c *ColumnRef) In(vs ...any) *In { return c.in(false, vs) }

// NotIn returns a predicate that checks if the column value is not in vs.
// An empty list matches all rows.
func (c *ColumnRef) NotIn(vs ...any) *In { return c.in(true, vs) }

// IsNull returns a predicate that checks if the column is NULL.
func (c *ColumnRef) IsNull() *Null { return &Null{X: c} }

// NotNull returns a predicate that checks if the column is not NULL.
func (c *ColumnRef) NotNull() *Null { return &Null{X: c, Not: true} }

// Asc returns an ascending ordering on the column.
func (c *ColumnRef) Asc() Ordering { return Asc(c) }

// Desc returns a descending ordering on the column.
func (c *ColumnRef) Desc() Ordering { return Desc(c) }

// Ordering implements Orderer with an ascending ordering.
func (c *ColumnRef) Ordering() Ordering { return Asc(c) }

// As returns the column under an alias.
func (c *ColumnRef) As(name string) *Alias { return As(c, name) }

// Check reports whether v may be bound to the column.
func (c *ColumnRef) Check(v any) error {
	if c.err != nil {
		return c.err
	}
	if !c.col.Type.Accepts(v) {
		got := "nil"
		if v != nil {
			got = fmt.Sprintf("%T", v)
		}
		return c.mismatch(got)
	}
	return nil
}

func (c *ColumnRef) compare(op Op, v any) *Comparison {
	if x, ok := v.(Expr); ok {
		return Compare(op, c, x)
	}
	cmp := &Comparison{Op: op, Left: c, Right: Value(v)}
	cmp.err = c.Check(v)
	return cmp
}

func (c *ColumnRef) in(not bool, vs []any) *In {
	vs = slices.Clone(vs)
	in := &In{X: c, Values: vs, Not: not, err: c.err}
	for i, v := range vs {
		if in.err != nil {
			break
		}
		if lit, ok := v.(*Literal); ok {
			v = lit.Value
			vs[i] = v
		}
		in.err = c.Check(v)
	}
	return in
}

func (c *ColumnRef) mismatch(got string) error {
	return &velq.TypeMismatchError{Column: c.String(), Expected: c.Type().String(), Got: got}
}

// Field is a column reference typed by the Go type of its values.
//
//	var title = expr.FieldOf[string](film, "title")
//	query.Where(title.EQ("ACADEMY DINOSAUR"))
type Field[T any] struct {
	*ColumnRef
}

// FieldOf returns the typed reference to the named column of src. A T that
// the column type does not accept is reported as a TypeMismatchError.
func FieldOf[T any](src *Source, name string) Field[T] {
	ref := src.C(name)
	if ref.err == nil && !ref.col.Type.AcceptsType(reflect.TypeFor[T]()) {
		ref.err = ref.mismatch(reflect.TypeFor[T]().String())
	}
	return Field[T]{ColumnRef: ref}
}

// EQ returns a predicate that checks if the field equals the given value.
func (f Field[T]) EQ(v T) *Comparison { return f.ColumnRef.EQ(v) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f Field[T]) NEQ(v T) *Comparison { return f.ColumnRef.NEQ(v) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f Field[T]) GT(v T) *Comparison { return f.ColumnRef.GT(v) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f Field[T]) GTE(v T) *Comparison { return f.ColumnRef.GTE(v) }

// LT returns a predicate that checks if the field is less than the given value.
func (f Field[T]) LT(v T) *Comparison { return f.ColumnRef.LT(v) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f Field[T]) LTE(v T) *Comparison { return f.ColumnRef.LTE(v) }

// In returns a predicate that checks if the field value is in the given list.
func (f Field[T]) In(vs ...T) *In { return f.ColumnRef.In(toAny(vs)...) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f Field[T]) NotIn(vs ...T) *In { return f.ColumnRef.NotIn(toAny(vs)...) }

// EqualTo returns a predicate that checks if the field equals another
// field of the same type, e.g. a join condition.
func (f Field[T]) EqualTo(o Field[T]) *Comparison { return Compare(OpEQ, f.ColumnRef, o.ColumnRef) }

func toAny[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

var (
	_ Typed   = (*ColumnRef)(nil)
	_ Orderer = (*ColumnRef)(nil)
	_ Typed   = Field[string]{}
)

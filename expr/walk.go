package expr

import "fmt"

// Walk traverses x depth-first, calling fn for every node. Returning false
// from fn skips the operands of that node. Nested sub-selects are visited
// as a single node; their statements are not entered.
func Walk(x Expr, fn func(Expr) bool) error {
	x = Unwrap(x)
	if x == nil {
		return fmt.Errorf("velq: nil expression")
	}
	if !fn(x) {
		return nil
	}
	switch x := x.(type) {
	case *ColumnRef, *Literal, *Nested:
		return nil
	case *Comparison:
		if err := Walk(x.Left, fn); err != nil {
			return err
		}
		return Walk(x.Right, fn)
	case *Logical:
		for _, op := range x.Operands {
			if err := Walk(op, fn); err != nil {
				return err
			}
		}
		return nil
	case *NotExpr:
		return Walk(x.X, fn)
	case *Null:
		return Walk(x.X, fn)
	case *In:
		return Walk(x.X, fn)
	case *Func:
		for _, arg := range x.Args {
			if err := Walk(arg, fn); err != nil {
				return err
			}
		}
		return nil
	case *Alias:
		return Walk(x.X, fn)
	default:
		return fmt.Errorf("velq: unexpected expression %T (kind %s)", x, x.Kind())
	}
}

// Columns returns the column references of x in traversal order.
func Columns(x Expr) ([]*ColumnRef, error) {
	var refs []*ColumnRef
	err := Walk(x, func(e Expr) bool {
		if c, ok := e.(*ColumnRef); ok {
			refs = append(refs, c)
		}
		return true
	})
	return refs, err
}

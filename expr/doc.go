// Package expr builds typed SQL expressions over registered tables.
//
// Expressions form a closed set of node kinds (column references, literals,
// comparisons, AND/OR, NOT, IS NULL, IN, aggregate functions, aliases and
// nested multiset projections). They are immutable and carry the first
// error found while building them, which the query package reports when a
// statement is built:
//
//	actor := expr.T(schema.Default.MustTable("actor"))
//	p := expr.And(
//	    actor.C("first_name").EQ("PENELOPE"),
//	    actor.C("actor_id").LT(10),
//	)
//
// Comparing a column with a value of the wrong Go type, or with a column of
// an incompatible type, yields a *velq.TypeMismatchError.
//
// # Navigation
//
// A source can follow the relationships declared in the schema. Columns of
// a navigated source are joined implicitly when used in a statement:
//
//	fa := expr.T(schema.Default.MustTable("film_actor"))
//	fa.Nav("actor").C("first_name")          // joins actor once
//	fa.Nav("film").Nav("language").C("name") // joins film, then language
//
// # Typed fields
//
// Field[T] ties a column to the Go type of its values, so that comparisons
// are checked by the compiler:
//
//	title := expr.FieldOf[string](film, "title")
//	title.EQ("ACADEMY DINOSAUR")
//	title.In("ACE GOLDFINGER", "ADAPTATION HOLES")
package expr

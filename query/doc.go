// Package query builds, renders and runs SQL statements over the tables of
// a schema.Registry.
//
// Builders are fluent and mutable; Build validates them and returns an
// immutable statement that renders for any supported dialect:
//
//	fa := expr.T(sakila.FilmActor)
//	stmt, err := query.Select(fa.Nav("actor").C("first_name"), fa.Nav("film").C("title")).
//		From(fa).
//		Where(fa.Nav("actor").C("actor_id").EQ(1)).
//		Build()
//
// Columns reached through Source.Nav add implicit joins, once per
// navigation path. To-one relationships over a non-nullable foreign key
// join with INNER JOIN, all others with LEFT JOIN.
//
// # Multisets
//
// Multiset nests a sub-select as a projection. The sub-select may reference
// the sources of the enclosing statement; it runs once per outer row with
// those columns bound as arguments, and its rows become a []record.Row
// value.
//
// # Execution
//
// A builder attached to a Runner runs with Fetch, FetchOne, FetchOptional
// or Execute. Driver failures are returned as *velq.DatabaseError with the
// violated constraint kind, if any.
package query

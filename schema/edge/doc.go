// Package edge provides fluent builders for declaring relationships between
// tables.
//
// Relationships are keyed by a foreign-key column and come in two
// cardinalities:
//
//   - edge.To: to-one. The foreign key lives on the source table.
//   - edge.From: to-many. The foreign key lives on the target table.
//
// The sakila link table film_actor declares both of its parents as to-one
// relationships, and each parent declares the inverse to-many side:
//
//	// film_actor
//	edge.To("actor", "actor").Field("actor_id")
//	edge.To("film", "film").Field("film_id")
//
//	// actor
//	edge.From("film_actors", "film_actor").Field("actor_id")
//
// Navigating a to-one relationship over a NOT NULL key yields an inner join;
// to-many relationships and nullable keys yield a left join.
//
// A foreign key that references a column other than the primary key is
// declared with References:
//
//	edge.To("language", "language").Field("language_code").References("code")
package edge

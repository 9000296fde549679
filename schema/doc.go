// Package schema models relational tables, their typed columns and their
// foreign-key relationships.
//
// Tables are declared with Define and registered in a Registry, usually the
// process-wide Default registry, at program start:
//
//	err := schema.Register(
//	    schema.Define("actor").
//	        Fields(
//	            field.Int("actor_id").Primary().Default(),
//	            field.String("first_name"),
//	            field.String("last_name"),
//	        ).
//	        Edges(edge.From("film_actors", "film_actor").Field("actor_id")).
//	        Mixin(mixin.LastUpdate{}),
//	    schema.Define("film_actor").
//	        Fields(field.Int("actor_id"), field.Int("film_id")).
//	        Edges(edge.To("actor", "actor").Field("actor_id")),
//	)
//
// A batch is validated as a whole, so tables of one batch may reference each
// other in any order. Registration fails with a *velq.SchemaError on
// duplicate tables, columns or relationships, and on relationships whose
// table or columns are not declared.
//
// Registration must complete before queries are built. After that the
// registry and its tables are read-only and safe for concurrent use.
//
// # Relationships
//
// Resolve returns the join of a declared relationship:
//
//	rel, err := schema.Resolve("film_actor", "actor")
//	// rel.Source.Name == "film_actor", rel.SourceColumn.Name == "actor_id"
//	// rel.Target.Name == "actor",      rel.TargetColumn.Name == "actor_id"
//
// Unknown relationships yield a *velq.UnknownRelationshipError.
package schema

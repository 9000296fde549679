// Package gen generates typed table references from registered tables.
//
// For every table the generator writes a struct embedding *expr.Source
// with one typed field per column and one method per relationship:
//
//	// ActorTable is a typed reference to the actor table.
//	type ActorTable struct {
//		*expr.Source
//		ActorID   expr.Field[int64]
//		FirstName expr.Field[string]
//	}
//
//	func Actors() ActorTable
//	func (t ActorTable) As(alias string) ActorTable
//	func (t ActorTable) FilmActors() FilmActorTable
//
// The generated package must declare the function named by
// Config.Registry, returning the *schema.Registry holding the tables.
package gen

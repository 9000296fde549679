// Package record holds result rows and maps them into Go structs.
//
// A Row is one result row. Multiset projections produce nested rows:
// the value of such a field is a []Row, empty when nothing correlates.
//
// Rows are mapped through a Descriptor that is resolved once per struct
// type and mode, then cached:
//
//	type FilmName struct{ Title string }
//	type ActorWithFilms struct {
//	    FirstName string
//	    LastName  string
//	    Films     []FilmName
//	}
//
//	a, err := record.Positional[ActorWithFilms](row) // by position
//	n, err := record.Into[ActorName](row)            // by name
//
// By name, a field matches the row field named by its `velq:"name"` tag or
// by the snake_case form of the Go name. Pointer and sql.Scanner fields
// accept NULL; any other field rejects it with a *velq.MappingError.
//
// A Record is a mutable set of column values bound to a table, used to
// insert new rows and to store changes to loaded ones.
package record

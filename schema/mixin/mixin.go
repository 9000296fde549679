// Package mixin provides reusable sets of columns for table definitions.
//
// To create a custom mixin, embed Schema and override the methods you need:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() []field.Field {
//	    return []field.Field{
//	        field.String("created_by").Nullable(),
//	    }
//	}
//
// and add it to a definition:
//
//	schema.Define("actor").Fields(...).Mixin(Audit{})
package mixin

import (
	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/edge"
	"github.com/syssam/velq/schema/field"
)

// Schema is the default implementation of schema.Mixin.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields returns the columns of the mixin.
func (Schema) Fields() []field.Field { return nil }

// Edges returns the relationships of the mixin.
func (Schema) Edges() []edge.Edge { return nil }

var _ schema.Mixin = (*Schema)(nil)

// LastUpdate adds the last_update timestamp maintained by the database,
// as found on every sakila table.
type LastUpdate struct {
	Schema
}

// Fields of the LastUpdate mixin.
func (LastUpdate) Fields() []field.Field {
	return []field.Field{
		field.Time("last_update").Default(),
	}
}

// ID adds an integer primary key generated by the database.
//
//	mixin.ID{Column: "actor_id"}
type ID struct {
	Schema
	// Column is the key column name. Defaults to "id".
	Column string
}

// Fields of the ID mixin.
func (m ID) Fields() []field.Field {
	name := m.Column
	if name == "" {
		name = "id"
	}
	return []field.Field{
		field.Int(name).Primary().Default(),
	}
}

var (
	_ schema.Mixin = (*LastUpdate)(nil)
	_ schema.Mixin = (*ID)(nil)
)

package edge

// Cardinality of a relationship, seen from its source table.
type Cardinality uint8

// Relationship cardinalities.
const (
	One  Cardinality = iota + 1 // to-one: at most one target row per source row.
	Many                        // to-many: any number of target rows per source row.
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	}
	return "invalid"
}

// Descriptor holds the relationship configuration.
type Descriptor struct {
	Name        string      // relationship name.
	Table       string      // target table.
	Cardinality Cardinality // one or many.
	// Field is the foreign-key column. It lives on the source table for
	// to-one relationships and on the target table for to-many ones.
	Field string
	// References is the referenced column on the other side. Empty means
	// the primary key of that table.
	References string
}

// Edge is the interface implemented by relationship builders.
type Edge interface {
	Descriptor() *Descriptor
}

// To declares a to-one relationship named name, pointing to table through
// a foreign key on the source table. For example, film_actor rows point to
// one actor:
//
//	edge.To("actor", "actor").Field("actor_id")
func To(name, table string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Table: table, Cardinality: One}}
}

// From declares a to-many relationship named name, collecting the rows of
// table whose foreign key references the source table. For example, an
// actor has many film_actor rows:
//
//	edge.From("film_actors", "film_actor").Field("actor_id")
func From(name, table string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Table: table, Cardinality: Many}}
}

// Builder is the builder for relationships.
type Builder struct {
	desc *Descriptor
}

// Field sets the foreign-key column of the relationship.
func (b *Builder) Field(f string) *Builder {
	b.desc.Field = f
	return b
}

// References sets the column referenced by the foreign key, for keys that
// do not reference a primary key.
func (b *Builder) References(column string) *Builder {
	b.desc.References = column
	return b
}

// Descriptor implements the Edge interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

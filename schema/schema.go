package schema

import (
	"slices"

	"github.com/syssam/velq/schema/edge"
	"github.com/syssam/velq/schema/field"
)

// Table is a registered table. Tables are immutable once registered.
type Table struct {
	Name          string
	Columns       []*Column       // in declaration order.
	PrimaryKey    *Column         // nil if the table has no primary key.
	Relationships []*Relationship // in declaration order.

	columns map[string]*Column
	rels    map[string]*Relationship
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.columns[name]
	return c, ok
}

// Relationship returns the relationship with the given name.
func (t *Table) Relationship(name string) (*Relationship, bool) {
	r, ok := t.rels[name]
	return r, ok
}

// ColumnNames returns the names of the table columns in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// RequiredColumns returns the columns an insert must supply.
func (t *Table) RequiredColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if c.Required() {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column is a typed table column.
type Column struct {
	Table    *Table // owning table.
	Name     string
	Type     field.Type
	Nullable bool
	Default  bool // database supplies a value when omitted on insert.
	Primary  bool
}

// Required reports whether an insert must supply a value for the column.
func (c *Column) Required() bool {
	return !c.Nullable && !c.Default
}

// String returns the qualified column name.
func (c *Column) String() string {
	return c.Table.Name + "." + c.Name
}

// Relationship is a declared foreign-key relationship. Joining the source
// to the target table is always Source.Column = Target.Column (the column
// names are resolved on their respective tables).
type Relationship struct {
	Name        string
	Source      *Table
	Target      *Table
	Cardinality edge.Cardinality
	// SourceColumn and TargetColumn are the join columns. For to-one
	// relationships SourceColumn is the foreign key, for to-many
	// relationships TargetColumn is.
	SourceColumn *Column
	TargetColumn *Column
}

// Optional reports whether a source row may have no matching target row,
// which is the case for to-many relationships and nullable foreign keys.
func (r *Relationship) Optional() bool {
	return r.Cardinality == edge.Many || r.SourceColumn.Nullable
}

// Mixin is a reusable set of columns and relationships.
type Mixin interface {
	Fields() []field.Field
	Edges() []edge.Edge
}

// Definition declares a table to be registered.
type Definition struct {
	name   string
	mixins []Mixin
	fields []field.Field
	edges  []edge.Edge
}

// Define starts the declaration of the named table.
//
//	schema.Define("film_actor").
//	    Fields(field.Int("actor_id"), field.Int("film_id")).
//	    Edges(edge.To("actor", "actor").Field("actor_id"))
func Define(name string) *Definition {
	return &Definition{name: name}
}

// Name returns the table name of the definition.
func (d *Definition) Name() string {
	return d.name
}

// Fields appends columns to the definition.
func (d *Definition) Fields(fields ...field.Field) *Definition {
	d.fields = append(d.fields, fields...)
	return d
}

// Edges appends relationships to the definition.
func (d *Definition) Edges(edges ...edge.Edge) *Definition {
	d.edges = append(d.edges, edges...)
	return d
}

// Mixin adds the columns and relationships of the given mixins. Mixin
// columns follow the columns declared with Fields.
func (d *Definition) Mixin(mixins ...Mixin) *Definition {
	d.mixins = append(d.mixins, mixins...)
	return d
}

func (d *Definition) allFields() []field.Field {
	fields := slices.Clone(d.fields)
	for _, m := range d.mixins {
		fields = append(fields, m.Fields()...)
	}
	return fields
}

func (d *Definition) allEdges() []edge.Edge {
	edges := slices.Clone(d.edges)
	for _, m := range d.mixins {
		edges = append(edges, m.Edges()...)
	}
	return edges
}

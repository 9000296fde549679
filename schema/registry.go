package schema

import (
	"fmt"
	"sync"

	"github.com/syssam/velq"
	"github.com/syssam/velq/schema/edge"
)

// Registry holds the registered tables. Registration happens at load time;
// afterwards the registry is only read.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []*Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Register registers the tables of the given definitions in Default.
func Register(defs ...*Definition) error {
	return Default.Register(defs...)
}

// Resolve resolves a relationship in Default.
func Resolve(table, relationship string) (*Relationship, error) {
	return Default.Resolve(table, relationship)
}

// Register validates and registers a batch of table definitions. The batch
// is registered as a whole or not at all. Relationships may point to tables
// of the same batch or to tables registered earlier.
func (r *Registry) Register(defs ...*Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make(map[string]*Table, len(defs))
	tables := make([]*Table, 0, len(defs))
	for _, d := range defs {
		t, err := buildTable(d)
		if err != nil {
			return err
		}
		if _, ok := r.tables[t.Name]; ok {
			return &velq.SchemaError{Table: t.Name, Msg: "table already registered"}
		}
		if _, ok := batch[t.Name]; ok {
			return &velq.SchemaError{Table: t.Name, Msg: "table declared twice"}
		}
		batch[t.Name] = t
		tables = append(tables, t)
	}
	lookup := func(name string) (*Table, bool) {
		if t, ok := batch[name]; ok {
			return t, true
		}
		t, ok := r.tables[name]
		return t, ok
	}
	for i, d := range defs {
		if err := buildRelationships(tables[i], d, lookup); err != nil {
			return err
		}
	}
	for _, t := range tables {
		r.tables[t.Name] = t
		r.order = append(r.order, t)
	}
	return nil
}

// Table returns the registered table with the given name.
func (r *Registry) Table(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// MustTable is like Table but panics if the table is not registered.
func (r *Registry) MustTable(name string) *Table {
	t, ok := r.Table(name)
	if !ok {
		panic(fmt.Sprintf("velq/schema: table %q is not registered", name))
	}
	return t
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tables := make([]*Table, len(r.order))
	copy(tables, r.order)
	return tables
}

// Resolve returns the named relationship of table, or an
// UnknownRelationshipError if the table does not declare it.
func (r *Registry) Resolve(table, relationship string) (*Relationship, error) {
	t, ok := r.Table(table)
	if !ok {
		return nil, &velq.UnknownRelationshipError{Table: table, Relationship: relationship}
	}
	rel, ok := t.Relationship(relationship)
	if !ok {
		return nil, &velq.UnknownRelationshipError{Table: table, Relationship: relationship}
	}
	return rel, nil
}

func buildTable(d *Definition) (*Table, error) {
	if d.name == "" {
		return nil, &velq.SchemaError{Msg: "missing table name"}
	}
	t := &Table{
		Name:    d.name,
		columns: make(map[string]*Column),
		rels:    make(map[string]*Relationship),
	}
	fields := d.allFields()
	if len(fields) == 0 {
		return nil, &velq.SchemaError{Table: t.Name, Msg: "table has no columns"}
	}
	for _, f := range fields {
		fd := f.Descriptor()
		switch {
		case fd.Name == "":
			return nil, &velq.SchemaError{Table: t.Name, Msg: "missing column name"}
		case !fd.Type.Valid():
			return nil, &velq.SchemaError{Table: t.Name, Column: fd.Name, Msg: "invalid column type"}
		case t.columns[fd.Name] != nil:
			return nil, &velq.SchemaError{Table: t.Name, Column: fd.Name, Msg: "duplicate column"}
		}
		c := &Column{
			Table:    t,
			Name:     fd.Name,
			Type:     fd.Type,
			Nullable: fd.Nullable,
			Default:  fd.Default,
			Primary:  fd.Primary,
		}
		if c.Primary {
			if t.PrimaryKey != nil {
				return nil, &velq.SchemaError{Table: t.Name, Column: c.Name, Msg: "multiple primary keys"}
			}
			if c.Nullable {
				return nil, &velq.SchemaError{Table: t.Name, Column: c.Name, Msg: "primary key cannot be nullable"}
			}
			t.PrimaryKey = c
		}
		t.Columns = append(t.Columns, c)
		t.columns[c.Name] = c
	}
	return t, nil
}

func buildRelationships(t *Table, d *Definition, lookup func(string) (*Table, bool)) error {
	for _, e := range d.allEdges() {
		ed := e.Descriptor()
		if ed.Name == "" {
			return &velq.SchemaError{Table: t.Name, Msg: "missing relationship name"}
		}
		if t.rels[ed.Name] != nil {
			return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: "duplicate relationship"}
		}
		if _, ok := t.columns[ed.Name]; ok {
			return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: "relationship name collides with a column"}
		}
		target, ok := lookup(ed.Table)
		if !ok {
			return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: fmt.Sprintf("undeclared target table %q", ed.Table)}
		}
		// The foreign key lives on the "many" side.
		fkTable, refTable := t, target
		if ed.Cardinality == edge.Many {
			fkTable, refTable = target, t
		}
		if ed.Field == "" {
			return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: "missing foreign-key column"}
		}
		fk, ok := fkTable.columns[ed.Field]
		if !ok {
			return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: fmt.Sprintf("undeclared foreign-key column %s.%s", fkTable.Name, ed.Field)}
		}
		ref := refTable.PrimaryKey
		if ed.References != "" {
			if ref, ok = refTable.columns[ed.References]; !ok {
				return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: fmt.Sprintf("undeclared referenced column %s.%s", refTable.Name, ed.References)}
			}
		}
		if ref == nil {
			return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: fmt.Sprintf("table %q has no primary key to reference", refTable.Name)}
		}
		if !fk.Type.Comparable(ref.Type) {
			return &velq.SchemaError{Table: t.Name, Column: ed.Name, Msg: fmt.Sprintf("foreign key %s (%s) does not match %s (%s)", fk, fk.Type, ref, ref.Type)}
		}
		rel := &Relationship{
			Name:         ed.Name,
			Source:       t,
			Target:       target,
			Cardinality:  ed.Cardinality,
			SourceColumn: fk,
			TargetColumn: ref,
		}
		if ed.Cardinality == edge.Many {
			rel.SourceColumn, rel.TargetColumn = ref, fk
		}
		t.Relationships = append(t.Relationships, rel)
		t.rels[rel.Name] = rel
	}
	return nil
}

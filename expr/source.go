package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/velq"
	"github.com/syssam/velq/schema"
)

// Source is a table reference in a statement. A root source is a table
// under an alias; a path source is reached from another source by
// navigating a relationship, and turns into an implicit join.
type Source struct {
	table  *schema.Table
	alias  string               // root alias.
	parent *Source              // nil for root sources.
	rel    *schema.Relationship // relationship from parent, nil for root sources.
	err    error
}

// T returns a root source for table, aliased by the table name.
func T(table *schema.Table) *Source {
	if table == nil {
		return &Source{err: errors.New("velq: nil table")}
	}
	return &Source{table: table, alias: table.Name}
}

// Table returns a root source for the named table of the default registry.
func Table(name string) *Source {
	t, ok := schema.Default.Table(name)
	if !ok {
		return &Source{alias: name, err: &velq.SchemaError{Table: name, Msg: "table is not registered"}}
	}
	return T(t)
}

// As returns a copy of the root source under a different alias. Path
// sources cannot be re-aliased.
func (s *Source) As(alias string) *Source {
	c := *s
	switch {
	case s.parent != nil:
		c.err = errors.Join(c.err, fmt.Errorf("velq: cannot alias navigation path %s", s.Key()))
	case alias == "":
		c.err = errors.Join(c.err, errors.New("velq: empty source alias"))
	default:
		c.alias = alias
	}
	return &c
}

// Schema returns the table the source refers to.
func (s *Source) Schema() *schema.Table { return s.table }

// Err returns the error recorded while building the source, if any.
func (s *Source) Err() error { return s.err }

// IsPath reports whether the source was reached by navigation.
func (s *Source) IsPath() bool { return s.parent != nil }

// Parent returns the source the path was navigated from.
func (s *Source) Parent() *Source { return s.parent }

// Relationship returns the relationship navigated from the parent.
func (s *Source) Relationship() *schema.Relationship { return s.rel }

// Root returns the root source of a path.
func (s *Source) Root() *Source {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Path returns the relationships navigated from the root, in order.
func (s *Source) Path() []*schema.Relationship {
	var path []*schema.Relationship
	for p := s; p.parent != nil; p = p.parent {
		path = append(path, p.rel)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Key identifies the source within a statement: the root alias followed
// by the relationship chain, e.g. "film_actor.actor".
func (s *Source) Key() string {
	if s.parent == nil {
		return s.alias
	}
	return s.parent.Key() + "." + s.rel.Name
}

// Alias returns the alias used in SQL text. Path sources are aliased by
// their key with underscores, e.g. "film_actor_actor".
func (s *Source) Alias() string {
	if s.parent == nil {
		return s.alias
	}
	return strings.ReplaceAll(s.Key(), ".", "_")
}

// String returns the source key.
func (s *Source) String() string { return s.Key() }

// Navigate returns the path source reached through the named relationship,
// or an UnknownRelationshipError.
func (s *Source) Navigate(relationship string) (*Source, error) {
	p := s.Nav(relationship)
	return p, p.err
}

// Nav is like Navigate, but defers the error to the expressions built
// from the returned source.
func (s *Source) Nav(relationship string) *Source {
	p := &Source{parent: s, alias: s.alias, err: s.err}
	if s.table == nil {
		if p.err == nil {
			p.err = fmt.Errorf("velq: navigate %q from an invalid source", relationship)
		}
		p.rel = &schema.Relationship{Name: relationship}
		return p
	}
	rel, ok := s.table.Relationship(relationship)
	if !ok {
		if p.err == nil {
			p.err = &velq.UnknownRelationshipError{Table: s.table.Name, Relationship: relationship}
		}
		p.rel = &schema.Relationship{Name: relationship}
		return p
	}
	p.rel, p.table = rel, rel.Target
	return p
}

// C returns a reference to the named column of the source.
func (s *Source) C(name string) *ColumnRef {
	ref := &ColumnRef{src: s, name: name, err: s.err}
	if ref.err != nil {
		return ref
	}
	col, ok := s.table.Column(name)
	if !ok {
		ref.err = &velq.SchemaError{Table: s.table.Name, Column: name, Msg: "unknown column"}
		return ref
	}
	ref.col = col
	return ref
}

// Columns returns references to all columns of the source, in
// declaration order.
func (s *Source) Columns() []*ColumnRef {
	if s.table == nil {
		return []*ColumnRef{{src: s, err: s.err}}
	}
	refs := make([]*ColumnRef, len(s.table.Columns))
	for i, c := range s.table.Columns {
		refs[i] = &ColumnRef{src: s, name: c.Name, col: c, err: s.err}
	}
	return refs
}

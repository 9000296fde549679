// Package load reads table declarations from YAML documents.
//
// A document lists tables with their columns and relationships:
//
//	tables:
//	  - name: actor
//	    mixins: [last_update]
//	    columns:
//	      - {name: actor_id, type: int, primary: true, default: true}
//	      - {name: first_name, type: string}
//	    relationships:
//	      - {name: film_actors, table: film_actor, cardinality: many, field: actor_id}
//
// Unknown keys are rejected.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/edge"
	"github.com/syssam/velq/schema/field"
	"github.com/syssam/velq/schema/mixin"

	"gopkg.in/yaml.v3"
)

// Document is the top level of a schema file.
type Document struct {
	Tables []*Table `yaml:"tables"`
}

// Table is a table declaration.
type Table struct {
	Name          string          `yaml:"name"`
	Mixins        []string        `yaml:"mixins,omitempty"`
	Columns       []*Column       `yaml:"columns"`
	Relationships []*Relationship `yaml:"relationships,omitempty"`
}

// Column is a column declaration.
type Column struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
	Primary  bool   `yaml:"primary,omitempty"`
}

// Relationship is a relationship declaration. Cardinality is "one"
// (the default) or "many".
type Relationship struct {
	Name        string `yaml:"name"`
	Table       string `yaml:"table"`
	Cardinality string `yaml:"cardinality,omitempty"`
	Field       string `yaml:"field"`
	References  string `yaml:"references,omitempty"`
}

// mixins that may be referenced by name from a schema file.
var mixins = map[string]schema.Mixin{
	"last_update": mixin.LastUpdate{},
}

// Parse decodes a YAML document into table definitions.
func Parse(data []byte) ([]*schema.Definition, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a YAML document from r and converts it into table
// definitions.
func Decode(r io.Reader) ([]*schema.Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("load: decoding schema: %w", err)
	}
	return doc.Definitions()
}

// File reads the schema file at path.
func File(path string) ([]*schema.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Parse(data)
}

// FS reads the named schema file from fsys.
func FS(fsys fs.FS, name string) ([]*schema.Definition, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Parse(data)
}

// Definitions converts the document into table definitions.
func (d *Document) Definitions() ([]*schema.Definition, error) {
	defs := make([]*schema.Definition, 0, len(d.Tables))
	for _, t := range d.Tables {
		def, err := t.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (t *Table) definition() (*schema.Definition, error) {
	def := schema.Define(t.Name)
	for _, c := range t.Columns {
		typ, ok := field.ParseType(c.Type)
		if !ok {
			return nil, fmt.Errorf("load: %s.%s: unknown column type %q", t.Name, c.Name, c.Type)
		}
		b := field.New(c.Name, typ)
		if c.Nullable {
			b.Nullable()
		}
		if c.Default {
			b.Default()
		}
		if c.Primary {
			b.Primary()
		}
		def.Fields(b)
	}
	for _, r := range t.Relationships {
		var b *edge.Builder
		switch r.Cardinality {
		case "", "one":
			b = edge.To(r.Name, r.Table)
		case "many":
			b = edge.From(r.Name, r.Table)
		default:
			return nil, fmt.Errorf("load: %s.%s: unknown cardinality %q", t.Name, r.Name, r.Cardinality)
		}
		def.Edges(b.Field(r.Field).References(r.References))
	}
	for _, name := range t.Mixins {
		m, ok := mixins[name]
		if !ok {
			return nil, fmt.Errorf("load: %s: unknown mixin %q", t.Name, name)
		}
		def.Mixin(m)
	}
	return def, nil
}

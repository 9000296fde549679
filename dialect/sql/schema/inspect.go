package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/schema/field"
)

// Querier runs the inspection queries. *sql.Driver and *client.Client
// implement it.
type Querier interface {
	Query(ctx context.Context, query string, args, v any) error
	Dialect() string
}

// Table is a table as found in the database.
type Table struct {
	Name    string
	Columns []*Column
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Column is a column as found in the database.
type Column struct {
	Name     string
	Type     string // database type, e.g. VARCHAR(45).
	Nullable bool
	Default  bool // has a default value or is auto-incremented.
	Primary  bool
}

// FieldType returns the column type the database type maps to, or
// field.TypeInvalid for types that have no mapping.
func (c *Column) FieldType() field.Type {
	t := strings.ToUpper(c.Type)
	switch {
	case strings.Contains(t, "UUID"):
		return field.TypeUUID
	case strings.Contains(t, "BOOL"), t == "TINYINT(1)":
		return field.TypeBool
	case strings.Contains(t, "INT"):
		return field.TypeInt64
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"), strings.Contains(t, "CLOB"):
		return field.TypeString
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "DEC"), strings.Contains(t, "NUMERIC"):
		return field.TypeFloat64
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return field.TypeTime
	case strings.Contains(t, "BLOB"), strings.Contains(t, "BYTEA"), strings.Contains(t, "BINARY"):
		return field.TypeBytes
	}
	return field.TypeInvalid
}

// Inspect reads the named tables from the database. Tables that do not
// exist are left out of the result.
func Inspect(ctx context.Context, drv Querier, names ...string) ([]*Table, error) {
	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := inspectTable(ctx, drv, name)
		if err != nil {
			return nil, fmt.Errorf("schema: inspect table %q: %w", name, err)
		}
		if len(t.Columns) > 0 {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

// Columns are selected as name, type, nullable, default and primary.
func columnsQuery(d, table string) (string, []any, error) {
	b := sql.Dialect(d)
	switch d {
	case dialect.SQLite:
		// INTEGER PRIMARY KEY columns alias the rowid and are assigned on insert.
		b.WriteString(`SELECT name, type, "notnull" = 0 AND pk = 0, dflt_value IS NOT NULL OR (pk = 1 AND upper(type) = 'INTEGER' AND `).
			WriteString("(SELECT count(*) FROM pragma_table_info(").Arg(table).WriteString(") WHERE pk > 0) = 1), pk > 0 FROM pragma_table_info(").
			Arg(table).WriteString(") ORDER BY cid")
	case dialect.Postgres:
		b.WriteString("SELECT c.column_name, c.data_type, c.is_nullable = 'YES', c.column_default IS NOT NULL OR c.is_identity = 'YES', ").
			WriteString("EXISTS (SELECT 1 FROM information_schema.table_constraints tc ").
			WriteString("JOIN information_schema.key_column_usage k ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema ").
			WriteString("WHERE tc.constraint_type = 'PRIMARY KEY' AND k.table_schema = c.table_schema AND k.table_name = c.table_name AND k.column_name = c.column_name) ").
			WriteString("FROM information_schema.columns c WHERE c.table_schema = current_schema() AND c.table_name = ").
			Arg(table).WriteString(" ORDER BY c.ordinal_position")
	case dialect.MySQL:
		b.WriteString("SELECT column_name, column_type, is_nullable = 'YES', column_default IS NOT NULL OR extra LIKE '%auto_increment%', column_key = 'PRI' ").
			WriteString("FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ").
			Arg(table).WriteString(" ORDER BY ordinal_position")
	default:
		return "", nil, fmt.Errorf("unsupported dialect %q", d)
	}
	query, args := b.Query()
	return query, args, nil
}

func inspectTable(ctx context.Context, drv Querier, name string) (*Table, error) {
	query, args, err := columnsQuery(drv.Dialect(), name)
	if err != nil {
		return nil, err
	}
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	t := &Table{Name: name}
	for rows.Next() {
		c := &Column{}
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.Default, &c.Primary); err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, c)
	}
	return t, rows.Err()
}

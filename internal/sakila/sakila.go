// Package sakila declares the Sakila sample schema and implements the
// quickstart queries against it.
package sakila

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/syssam/velq/client"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/load"
)

//go:generate go run ../../cmd/velqgen --schema schema.yaml --package sakila --out tables_gen.go

//go:embed schema.yaml sql/*.sql
var files embed.FS

// Register adds the Sakila tables to r.
func Register(r *schema.Registry) error {
	defs, err := load.FS(files, "schema.yaml")
	if err != nil {
		return err
	}
	return r.Register(defs...)
}

var registry = sync.OnceValues(func() (*schema.Registry, error) {
	r := schema.NewRegistry()
	if err := Register(r); err != nil {
		return nil, fmt.Errorf("sakila: %w", err)
	}
	return r, nil
})

// Registry returns the registry holding the Sakila tables.
func Registry() (*schema.Registry, error) {
	return registry()
}

// MustRegistry is like Registry but panics if the embedded schema is
// invalid.
func MustRegistry() *schema.Registry {
	r, err := registry()
	if err != nil {
		panic(err)
	}
	return r
}

// CreateSchema creates the Sakila tables. Only SQLite is supported.
func CreateSchema(ctx context.Context, c *client.Client) error {
	return run(ctx, c, "sql/sqlite.sql")
}

// Seed inserts the sample rows.
func Seed(ctx context.Context, c *client.Client) error {
	return c.Transaction(ctx, func(ctx context.Context) error {
		return run(ctx, c, "sql/seed.sql")
	})
}

func run(ctx context.Context, c *client.Client, name string) error {
	if d := c.Dialect(); d != dialect.SQLite {
		return fmt.Errorf("sakila: %s scripts are not available for %s", name, d)
	}
	data, err := files.ReadFile(name)
	if err != nil {
		return err
	}
	for _, stmt := range statements(string(data)) {
		if err := c.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("sakila: %s: %w", name, err)
		}
	}
	return nil
}

// statements splits a script on semicolons that end a line.
func statements(script string) []string {
	var stmts []string
	for _, s := range strings.Split(script, ";\n") {
		if s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";")); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

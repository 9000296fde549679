// Package dialect provides database dialect abstraction for velq.
//
// This package defines the interfaces used by the execution engine to talk to
// a database, allowing statements to be rendered and executed against
// PostgreSQL, MySQL, and SQLite.
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// The dialect decides how identifiers are quoted and how bind parameters
// are written ($1 for PostgreSQL, ? for the others).
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Transaction Interface
//
// The Tx interface extends ExecQuerier with transaction methods:
//
//	type Tx interface {
//	    ExecQuerier
//	    Commit() error
//	    Rollback() error
//	}
//
// # Usage
//
//	import (
//	    "github.com/syssam/velq/client"
//	    "github.com/syssam/velq/dialect"
//	    "github.com/syssam/velq/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c := client.NewClient(drv)
//	defer c.Close()
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver, SQL text builder, stats and debug drivers
//   - dialect/sql/sqlerr: classification of constraint violations
package dialect

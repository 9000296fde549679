// Package sql provides the database/sql backed driver and the low-level SQL
// text builder used by the velq execution engine.
//
// # Driver
//
// Driver adapts a *sql.DB to the dialect.Driver interface:
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	tx, err := drv.Tx(ctx)
//
// The driver name given to Open is handed to database/sql unchanged, so the
// corresponding database/sql driver must be registered by the program
// (lib/pq, go-sql-driver/mysql or modernc.org/sqlite).
//
// # Builder
//
// Builder writes SQL text for one dialect. Identifiers are quoted and values
// are always bound as parameters:
//
//	b := sql.Dialect(dialect.Postgres)
//	b.WriteString("SELECT ").Qualified("actor", "first_name").
//	    WriteString(" FROM ").Ident("actor").
//	    WriteString(" WHERE ").Qualified("actor", "actor_id").WriteString(" = ").Arg(1)
//	query, args := b.Query()
//	// SELECT "actor"."first_name" FROM "actor" WHERE "actor"."actor_id" = $1, [1]
//
// # Instrumentation
//
// StatsDriver counts statements and reports slow ones; DebugDriver logs
// every statement through log/slog:
//
//	drv = sql.NewStatsDriver(drv, sql.WithSlowThreshold(200*time.Millisecond), sql.WithSlowQueryLog(logger))
package sql

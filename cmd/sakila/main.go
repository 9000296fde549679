// Command sakila runs the velq quickstart queries against a Sakila
// database.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/syssam/velq/internal/cli"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

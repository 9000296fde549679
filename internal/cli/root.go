// Package cli implements the sakila command.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/syssam/velq/client"
	"github.com/syssam/velq/config"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/internal/sakila"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// app holds what the subcommands share once the configuration is loaded.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
	client  *client.Client
	queries *sakila.Queries
}

// NewRootCmd returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "sakila",
		Short: "Query the Sakila sample database",
		Long: `sakila runs the quickstart queries against a Sakila database.

By default it uses an in-memory SQLite database that is created and seeded
on start. Settings are read from velq.yaml, VELQ_* environment variables
and flags.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.open(cmd.Context(), cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./velq.yaml)")
	flags.String("driver", "", "database driver (sqlite|postgres|mysql)")
	flags.String("dsn", "", "data source name")
	flags.Bool("debug", false, "log every statement")
	flags.Duration("slow-threshold", 0, "log statements slower than this")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.StringP("output", "o", "", "output format (table|csv|markdown)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputTable, config.OutputCSV, config.OutputMarkdown}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("driver", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{dialect.SQLite, dialect.Postgres, dialect.MySQL}, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(
		newFilmsCmd(a),
		newFilmCmd(a),
		newActorsCmd(a),
		newActorsWithFilmsCmd(a),
		newAddActorCmd(a),
		newRenameActorCmd(a),
		newDeleteActorCmd(a),
		newSeedCmd(a),
		newCheckCmd(a),
	)
	return cmd
}

func (a *app) open(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr())
	if cfg.File != "" {
		a.log.Debug("using config file", "path", cfg.File)
	}
	opts := []client.Option{
		client.Log(a.log),
		client.Stats(sql.WithSlowThreshold(cfg.SlowThreshold), sql.WithSlowQueryLog(a.log)),
	}
	if cfg.Debug {
		opts = append(opts, client.Debug())
	}
	c, err := client.Open(cfg.Driver, cfg.DSN, opts...)
	if err != nil {
		return err
	}
	a.client = c
	a.queries = sakila.NewQueries(c)
	if cfg.Driver == dialect.SQLite && inMemory(cfg.DSN) {
		return a.seed(ctx)
	}
	return nil
}

func (a *app) seed(ctx context.Context) error {
	if err := sakila.CreateSchema(ctx, a.client); err != nil {
		return err
	}
	n, err := a.queries.CountActors(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		a.log.Info("database already seeded", "actors", n)
		return nil
	}
	return sakila.Seed(ctx, a.client)
}

func (a *app) close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	if s, ok := a.client.Stats(); ok {
		a.log.DebugContext(ctx, "statements", "stats", s.String())
	}
	err := a.client.Close()
	a.client = nil
	return err
}

func inMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

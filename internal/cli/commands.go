package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/syssam/velq"
	sqlschema "github.com/syssam/velq/dialect/sql/schema"
	"github.com/syssam/velq/internal/sakila"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newFilmsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "films",
		Short: "List all films",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			films, err := a.queries.FindAllFilms(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]table.Row, len(films))
			for i, f := range films {
				rows[i] = filmRow(f)
			}
			return a.render(cmd, filmHeader, rows)
		},
	}
}

func newFilmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "film <id>",
		Short: "Show a film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := a.queries.FindFilm(cmd.Context(), id)
			if err != nil {
				return err
			}
			if f == nil {
				return velq.NewNoResultError("film")
			}
			return a.render(cmd, filmHeader, []table.Row{filmRow(*f)})
		},
	}
}

var filmHeader = table.Row{"film_id", "title", "release_year", "rental_rate", "length"}

func filmRow(f sakila.Film) table.Row {
	return table.Row{f.FilmID, f.Title, deref(f.ReleaseYear), f.RentalRate, deref(f.Length)}
}

func newActorsCmd(a *app) *cobra.Command {
	var (
		category string
		implicit bool
	)
	cmd := &cobra.Command{
		Use:   "actors",
		Short: "List the actors of the films of a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			find := a.queries.ActorsOfCategory
			if implicit {
				find = a.queries.ActorsOfCategoryImplicit
			}
			actors, err := find(cmd.Context(), category)
			if err != nil {
				return err
			}
			rows := make([]table.Row, len(actors))
			for i, n := range actors {
				rows[i] = table.Row{n.FirstName, n.LastName}
			}
			return a.render(cmd, table.Row{"first_name", "last_name"}, rows)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "Horror", "category name")
	cmd.Flags().BoolVar(&implicit, "implicit", false, "reach actor and category through relationships")
	return cmd
}

func newActorsWithFilmsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "actors-with-films",
		Short: "List every actor with the titles of their films",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actors, err := a.queries.ActorsWithFilms(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]table.Row, len(actors))
			for i, x := range actors {
				titles := make([]string, len(x.Films))
				for j, f := range x.Films {
					titles[j] = f.Name
				}
				rows[i] = table.Row{x.FirstName, x.LastName, len(titles), joinTitles(titles)}
			}
			return a.render(cmd, table.Row{"first_name", "last_name", "films", "titles"}, rows)
		},
	}
}

func newAddActorCmd(a *app) *cobra.Command {
	var (
		tx       bool
		rollback bool
	)
	cmd := &cobra.Command{
		Use:   "add-actor <first-name> <last-name>",
		Short: "Insert an actor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !tx && !rollback {
				actor, err := a.queries.AddActor(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return a.render(cmd, table.Row{"actor_id", "first_name", "last_name", "last_update"},
					[]table.Row{{actor.ActorID, actor.FirstName, actor.LastName, actor.LastUpdate}})
			}
			var then func(context.Context) error
			if rollback {
				then = func(context.Context) error { return errRollback }
			}
			err := a.queries.AddActorInTransaction(ctx, args[0], args[1], then)
			switch {
			case errors.Is(err, errRollback):
				a.log.InfoContext(ctx, "transaction rolled back", "first_name", args[0], "last_name", args[1])
			case err != nil:
				return err
			}
			n, err := a.queries.CountActors(ctx)
			if err != nil {
				return err
			}
			return a.render(cmd, table.Row{"actors"}, []table.Row{{n}})
		},
	}
	cmd.Flags().BoolVar(&tx, "tx", false, "insert inside a transaction")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll the transaction back after the insert")
	return cmd
}

var errRollback = errors.New("rollback requested")

func newRenameActorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-actor <id> <last-name>",
		Short: "Change the last name of an actor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.queries.RenameActor(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return a.render(cmd, table.Row{"actor_id", "updated"}, []table.Row{{id, ok}})
		},
	}
}

func newDeleteActorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-actor <id>",
		Short: "Delete an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.queries.DeleteActor(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.render(cmd, table.Row{"actor_id", "deleted"}, []table.Row{{id, ok}})
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the tables and insert the sample rows (SQLite only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.seed(cmd.Context()); err != nil {
				return err
			}
			n, err := a.queries.CountActors(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(cmd, table.Row{"actors"}, []table.Row{{n}})
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare the declared tables with the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []sqlschema.ValidateOption
			if strict {
				opts = append(opts, sqlschema.StrictNullability())
			}
			result, err := sqlschema.Check(cmd.Context(), a.client, sakila.MustRegistry().Tables(), opts...)
			if err != nil {
				return err
			}
			var rows []table.Row
			for _, e := range result.Errors {
				rows = append(rows, table.Row{"error", e.Table, e.Column, e.Message})
			}
			for _, w := range result.Warnings {
				rows = append(rows, table.Row{"warning", w.Table, w.Column, w.Message})
			}
			if err := a.render(cmd, table.Row{"level", "table", "column", "message"}, rows); err != nil {
				return err
			}
			if result.HasErrors() {
				return fmt.Errorf("schema check failed with %d errors", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "report nullability differences as errors")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func deref[T any](p *T) any {
	if p == nil {
		return ""
	}
	return *p
}

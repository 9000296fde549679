package query_test

import (
	"context"
	"errors"
	"testing"

	"github.com/syssam/velq"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/query"
	"github.com/syssam/velq/record"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builder interface {
	Query(string) (string, []any, error)
}

func isBuildError(err error) bool {
	var e *velq.BuildError
	return errors.As(err, &e)
}

func TestMutation_Render(t *testing.T) {
	f := sakila(t)
	a := f.actor
	tests := []struct {
		name    string
		dialect string
		stmt    func() (builder, error)
		want    string
		args    []any
	}{
		{
			name:    "insert_values",
			dialect: dialect.Postgres,
			stmt: func() (builder, error) {
				return query.InsertInto(a, a.C("first_name"), a.C("last_name")).
					Values("PENELOPE", "GUINESS").
					Values("NICK", "WAHLBERG").
					Build()
			},
			want: `INSERT INTO "actor" ("first_name", "last_name") VALUES ($1, $2), ($3, $4)`,
			args: []any{"PENELOPE", "GUINESS", "NICK", "WAHLBERG"},
		},
		{
			name:    "insert_set_returning_all",
			dialect: dialect.Postgres,
			stmt: func() (builder, error) {
				return query.InsertInto(a).
					Set(a.C("first_name"), "HAADI").
					Set(a.C("last_name"), "BOLOT").
					Set(a.C("last_name"), "BOLOTBEKOV").
					Returning().
					Build()
			},
			want: `INSERT INTO "actor" ("first_name", "last_name") VALUES ($1, $2) RETURNING "actor_id", "first_name", "last_name", "last_update"`,
			args: []any{"HAADI", "BOLOTBEKOV"},
		},
		{
			name:    "insert_record",
			dialect: dialect.SQLite,
			stmt: func() (builder, error) {
				rec := record.New(a.Schema()).Set("last_name", "BOLOTBEKOV").Set("first_name", "HAADI")
				return query.InsertInto(a).SetRecord(rec).Returning(a.C("actor_id")).Build()
			},
			want: `INSERT INTO "actor" ("first_name", "last_name") VALUES (?, ?) RETURNING "actor_id"`,
			args: []any{"HAADI", "BOLOTBEKOV"},
		},
		{
			name:    "insert_nullable_nil",
			dialect: dialect.MySQL,
			stmt: func() (builder, error) {
				return query.InsertInto(f.film, f.film.C("title"), f.film.C("description"), f.film.C("language_id")).
					Values("ACE GOLDFINGER", nil, 1).
					Build()
			},
			want: "INSERT INTO `film` (`title`, `description`, `language_id`) VALUES (?, ?, ?)",
			args: []any{"ACE GOLDFINGER", nil, 1},
		},
		{
			name:    "update",
			dialect: dialect.Postgres,
			stmt: func() (builder, error) {
				return query.Update(a).Set(a.C("last_name"), "WAHLBERG").Where(a.C("actor_id").EQ(2)).Build()
			},
			want: `UPDATE "actor" SET "last_name" = $1 WHERE "actor"."actor_id" = $2`,
			args: []any{"WAHLBERG", 2},
		},
		{
			name:    "update_from_column",
			dialect: dialect.Postgres,
			stmt: func() (builder, error) {
				return query.Update(f.film).Set(f.film.C("original_language_id"), f.film.C("language_id")).Build()
			},
			want: `UPDATE "film" SET "original_language_id" = "film"."language_id"`,
		},
		{
			name:    "update_returning",
			dialect: dialect.SQLite,
			stmt: func() (builder, error) {
				return query.Update(a).
					Set(a.C("last_name"), "WAHLBERG").
					Where(a.C("actor_id").EQ(2), a.C("first_name").EQ("NICK")).
					Returning(a.C("actor_id"), a.C("last_name")).
					Build()
			},
			want: `UPDATE "actor" SET "last_name" = ? WHERE "actor"."actor_id" = ? AND "actor"."first_name" = ? RETURNING "actor_id", "last_name"`,
			args: []any{"WAHLBERG", 2, "NICK"},
		},
		{
			name:    "delete",
			dialect: dialect.Postgres,
			stmt: func() (builder, error) {
				return query.DeleteFrom(a).Where(a.C("actor_id").EQ(201)).Build()
			},
			want: `DELETE FROM "actor" WHERE "actor"."actor_id" = $1`,
			args: []any{201},
		},
		{
			name:    "delete_all_returning",
			dialect: dialect.Postgres,
			stmt: func() (builder, error) {
				return query.DeleteFrom(f.language).Returning(f.language.C("name")).Build()
			},
			want: `DELETE FROM "language" RETURNING "name"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := tt.stmt()
			require.NoError(t, err)
			q, args, err := stmt.Query(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestInsert_BuildErrors(t *testing.T) {
	f := sakila(t)
	a := f.actor

	t.Run("missing_required_columns", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name")).Values("HAADI").Build()
		require.Error(t, err)
		var mc *velq.MissingColumnError
		require.ErrorAs(t, err, &mc)
		assert.Equal(t, "actor", mc.Table)
		assert.Equal(t, []string{"last_name"}, mc.Columns)
	})
	t.Run("arity", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).Values("HAADI").Build()
		assert.True(t, isBuildError(err))
	})
	t.Run("type_mismatch", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).Values(1, "BOLOTBEKOV").Build()
		assert.True(t, velq.IsTypeMismatch(err))
	})
	t.Run("wrapped_literal_mismatch", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).Values(expr.Value(1), "BOLOTBEKOV").Build()
		assert.True(t, velq.IsTypeMismatch(err))
	})
	t.Run("nil_into_not_null", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).Values(nil, "BOLOTBEKOV").Build()
		assert.True(t, velq.IsTypeMismatch(err))
	})
	t.Run("column_of_other_table", func(t *testing.T) {
		_, err := query.InsertInto(a, f.film.C("title")).Values("X").Build()
		assert.True(t, isBuildError(err))
	})
	t.Run("duplicate_column", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name"), a.C("first_name"), a.C("last_name")).Values("A", "B", "C").Build()
		assert.True(t, isBuildError(err))
	})
	t.Run("set_and_values", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name")).Values("A").Set(a.C("last_name"), "B").Build()
		assert.True(t, isBuildError(err))
	})
	t.Run("no_values", func(t *testing.T) {
		_, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).Build()
		assert.True(t, isBuildError(err))
	})
	t.Run("invalid_record", func(t *testing.T) {
		rec := record.New(a.Schema()).Set("first_name", 42)
		_, err := query.InsertInto(a).SetRecord(rec).Build()
		assert.True(t, velq.IsTypeMismatch(err))
	})
	t.Run("record_of_other_table", func(t *testing.T) {
		rec := record.New(f.language.Schema()).Set("name", "English")
		_, err := query.InsertInto(a).SetRecord(rec).Build()
		assert.True(t, isBuildError(err))
	})
	t.Run("navigation_path", func(t *testing.T) {
		_, err := query.InsertInto(f.filmActor.Nav("actor")).Build()
		assert.True(t, isBuildError(err))
	})
}

func TestUpdateDelete_BuildErrors(t *testing.T) {
	f := sakila(t)
	a := f.actor

	_, err := query.Update(a).Where(a.C("actor_id").EQ(1)).Build()
	assert.True(t, isBuildError(err), "no assignments")

	_, err = query.Update(a).Set(a.C("first_name"), 1).Build()
	assert.True(t, velq.IsTypeMismatch(err))

	_, err = query.Update(a).Set(a.C("actor_id"), expr.Value("x")).Build()
	assert.True(t, velq.IsTypeMismatch(err), "wrapped literal")

	_, err = query.Update(a).Set(a.C("first_name"), "X").Where(a.C("actor_id").EQ(expr.Value("x"))).Build()
	assert.True(t, velq.IsTypeMismatch(err), "wrapped literal in where")

	upd, err := query.Update(a).Set(a.C("first_name"), expr.Value("X")).Where(a.C("actor_id").EQ(1)).Build()
	require.NoError(t, err)
	text, args, err := upd.Query(dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "actor" SET "first_name" = $1 WHERE "actor"."actor_id" = $2`, text)
	assert.Equal(t, []any{"X", 1}, args)

	_, err = query.Update(f.film).Set(f.film.C("title"), f.film.C("language_id")).Build()
	assert.True(t, velq.IsTypeMismatch(err))

	_, err = query.Update(a).Set(a.C("first_name"), "X").Where(f.film.C("film_id").EQ(1)).Build()
	assert.True(t, velq.IsUnboundColumn(err))

	_, err = query.DeleteFrom(f.filmActor).Where(f.filmActor.Nav("actor").C("last_name").EQ("GUINESS")).Build()
	assert.True(t, isBuildError(err))

	_, err = query.DeleteFrom(a).Returning(f.film.C("title")).Build()
	assert.True(t, isBuildError(err))
}

func TestInsert_Execute(t *testing.T) {
	f := sakila(t)
	a := f.actor
	ctx := context.Background()

	t.Run("affected_rows", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.SQLite)
		mock.ExpectExec(`INSERT INTO "actor" ("first_name", "last_name") VALUES (?, ?), (?, ?)`).
			WithArgs("A", "B", "C", "D").
			WillReturnResult(sqlmock.NewResult(0, 2))
		n, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).
			Values("A", "B").
			Values("C", "D").
			Returning().
			Attach(drv).
			Execute(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returning", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectQuery(`INSERT INTO "actor" ("first_name", "last_name") VALUES ($1, $2) RETURNING "actor_id", "first_name", "last_name"`).
			WithArgs("HAADI", "BOLOTBEKOV").
			WillReturnRows(sqlmock.NewRows([]string{"actor_id", "first_name", "last_name"}).AddRow(int64(201), "HAADI", "BOLOTBEKOV"))
		row, err := query.InsertInto(a).
			Set(a.C("first_name"), "HAADI").
			Set(a.C("last_name"), "BOLOTBEKOV").
			Returning(a.C("actor_id"), a.C("first_name"), a.C("last_name")).
			Attach(drv).
			FetchOne(ctx)
		require.NoError(t, err)
		id, _ := row.Get("actor_id")
		assert.Equal(t, int64(201), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql_reads_back_by_last_insert_id", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.MySQL)
		mock.ExpectExec("INSERT INTO `actor` (`first_name`, `last_name`) VALUES (?, ?)").
			WithArgs("HAADI", "BOLOTBEKOV").
			WillReturnResult(sqlmock.NewResult(201, 1))
		mock.ExpectQuery("SELECT `actor`.`actor_id`, `actor`.`first_name` FROM `actor` WHERE `actor`.`actor_id` = ?").
			WithArgs(int64(201)).
			WillReturnRows(sqlmock.NewRows([]string{"actor_id", "first_name"}).AddRow(int64(201), "HAADI"))
		row, err := query.InsertInto(a).
			Set(a.C("first_name"), "HAADI").
			Set(a.C("last_name"), "BOLOTBEKOV").
			Returning(a.C("actor_id"), a.C("first_name")).
			Attach(drv).
			FetchOne(ctx)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(201), "HAADI"}, row.Values)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql_multi_row_returning", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.MySQL)
		_, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).
			Values("A", "B").
			Values("C", "D").
			Returning().
			Attach(drv).
			Fetch(ctx)
		assert.True(t, isBuildError(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fetch_without_returning", func(t *testing.T) {
		drv, _ := mockDriver(t, dialect.Postgres)
		_, err := query.InsertInto(a, a.C("first_name"), a.C("last_name")).Values("A", "B").Attach(drv).Fetch(ctx)
		assert.True(t, isBuildError(err))
	})
}

func TestUpdateDelete_Execute(t *testing.T) {
	f := sakila(t)
	a := f.actor
	ctx := context.Background()

	t.Run("update", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectExec(`UPDATE "actor" SET "last_name" = $1 WHERE "actor"."actor_id" = $2`).
			WithArgs("WAHLBERG", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		n, err := query.Update(a).Set(a.C("last_name"), "WAHLBERG").Where(a.C("actor_id").EQ(2)).Attach(drv).Execute(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update_returning", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectQuery(`UPDATE "actor" SET "last_name" = $1 WHERE "actor"."actor_id" = $2 RETURNING "last_name"`).
			WithArgs("WAHLBERG", 2).
			WillReturnRows(sqlmock.NewRows([]string{"last_name"}).AddRow([]byte("WAHLBERG")))
		row, err := query.Update(a).Set(a.C("last_name"), "WAHLBERG").Where(a.C("actor_id").EQ(2)).
			Returning(a.C("last_name")).
			Attach(drv).
			FetchOne(ctx)
		require.NoError(t, err)
		assert.Equal(t, "WAHLBERG", row.Value(0))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql_update_returning", func(t *testing.T) {
		drv, _ := mockDriver(t, dialect.MySQL)
		_, err := query.Update(a).Set(a.C("last_name"), "X").Returning().Attach(drv).Fetch(ctx)
		assert.True(t, isBuildError(err))
	})

	t.Run("delete", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.SQLite)
		mock.ExpectExec(`DELETE FROM "actor" WHERE "actor"."actor_id" = ?`).
			WithArgs(201).
			WillReturnResult(sqlmock.NewResult(0, 0))
		n, err := query.DeleteFrom(a).Where(a.C("actor_id").EQ(201)).Attach(drv).Execute(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete_returning_none", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.SQLite)
		mock.ExpectQuery(`DELETE FROM "actor" WHERE "actor"."actor_id" = ? RETURNING "actor_id"`).
			WithArgs(201).
			WillReturnRows(sqlmock.NewRows([]string{"actor_id"}))
		_, err := query.DeleteFrom(a).Where(a.C("actor_id").EQ(201)).Returning(a.C("actor_id")).Attach(drv).FetchOne(ctx)
		assert.True(t, velq.IsNoResult(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
